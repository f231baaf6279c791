package spider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesFetched tracks the number of pages successfully downloaded.
	TotalPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_pages_fetched_total",
		Help: "The total number of pages successfully fetched by the spider.",
	})
	// TotalFetchErrors tracks the number of page fetches that failed.
	TotalFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// TotalRecordsKept tracks the number of records that survived the drop policy.
	TotalRecordsKept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_records_kept_total",
		Help: "The total number of extracted records kept.",
	})
	// TotalRecordsDropped tracks the number of candidates discarded for empty data types.
	TotalRecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_records_dropped_total",
		Help: "The total number of extracted candidates dropped.",
	})
)
