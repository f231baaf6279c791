package spider

import (
	"bytes"
	"context"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/record"
)

// Spider visits filtered URLs under bounded concurrency and extracts at
// most one record per page.
type Spider struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a Spider.
func New(cfg Config, logger *zap.Logger) *Spider {
	return &Spider{cfg: cfg, logger: logger}
}

// crawlState is the mutable state shared by collector callbacks. The
// mutex serializes identifier allocation with the append so record IDs
// always match output order even when page workers complete concurrently.
type crawlState struct {
	mu      sync.Mutex
	records []record.Dataset
	kept    int
	fetched int
}

func (s *crawlState) pageBudgetExhausted(pageLimit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pageLimit > 0 && s.fetched >= pageLimit
}

// countPage records one downloaded page against the page limit and
// reports whether the page is within budget. Requests that fail before a
// response arrives are never counted.
func (s *crawlState) countPage(pageLimit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageLimit > 0 && s.fetched >= pageLimit {
		return false
	}
	s.fetched++
	return true
}

func (s *crawlState) itemBudgetExhausted(itemLimit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemLimit > 0 && s.kept >= itemLimit
}

func (s *crawlState) keep(rec record.Dataset, counter *record.Counter, itemLimit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if itemLimit > 0 && s.kept >= itemLimit {
		return false
	}
	rec.ID = counter.Next()
	s.records = append(s.records, rec)
	s.kept++
	return true
}

// Run crawls urls and returns the kept records in keep order. Each kept
// record consumes the next identifier from counter; dropped candidates do
// not. The stage ends early, without error, when the item limit, the page
// limit (downloaded pages, not attempts), or context cancellation trips;
// in-flight fetches drain and whatever has been extracted so far is kept.
func (s *Spider) Run(ctx context.Context, urls []string, counter *record.Counter) []record.Dataset {
	if len(urls) == 0 {
		return nil
	}

	state := &crawlState{records: make([]record.Dataset, 0)}
	collector := s.initCollector(ctx, state, counter)

	for _, u := range urls {
		if ctx.Err() != nil || state.itemBudgetExhausted(s.cfg.ItemLimit) {
			break
		}
		if err := collector.Visit(u); err != nil {
			s.logger.Debug("Visit rejected", zap.String("url", u), zap.Error(err))
		}
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("Crawl stage canceled; keeping extracted records",
			zap.Int("kept", state.kept),
			zap.Error(err),
		)
	}
	return state.records
}

func (s *Spider) initCollector(ctx context.Context, state *crawlState, counter *record.Counter) *colly.Collector {
	collector := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(s.cfg.UserAgent),
	)
	collector.AllowURLRevisit = false
	collector.IgnoreRobotsTxt = !s.cfg.RespectRobots
	collector.SetRequestTimeout(s.cfg.RequestTimeout)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.cfg.Concurrency,
		Delay:       s.cfg.Delay,
	}); err != nil {
		s.logger.Fatal("Failed to set collector limits", zap.Error(err))
	}

	collector.OnRequest(func(r *colly.Request) {
		// Best-effort early abort. Queued requests may have passed this
		// point before the budgets tripped, so both limits are enforced
		// again on the response side.
		if ctx.Err() != nil || state.itemBudgetExhausted(s.cfg.ItemLimit) {
			r.Abort()
			return
		}
		if state.pageBudgetExhausted(s.cfg.PageLimit) {
			r.Abort()
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		if !state.countPage(s.cfg.PageLimit) {
			return
		}
		TotalPagesFetched.Inc()
		rec, ok := s.extractPage(r)
		if !ok {
			TotalRecordsDropped.Inc()
			return
		}
		if state.keep(rec, counter, s.cfg.ItemLimit) {
			TotalRecordsKept.Inc()
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		// An HTTP error status is still a downloaded page and consumes
		// the page budget; a transport failure never produced one.
		if r.StatusCode != 0 {
			state.countPage(s.cfg.PageLimit)
		}
		TotalFetchErrors.Inc()
		s.logger.Warn("Page fetch failed",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status_code", r.StatusCode),
			zap.Error(err),
		)
	})

	return collector
}

// extractPage parses one fetched page and applies the extraction rules.
// Failures are isolated per URL: a malformed page yields no record and
// never aborts the crawl.
func (s *Spider) extractPage(r *colly.Response) (rec record.Dataset, ok bool) {
	pageURL := r.Request.URL
	defer func() {
		if rc := recover(); rc != nil {
			s.logger.Error("Panic while extracting page",
				zap.String("url", pageURL.String()),
				zap.Any("panic", rc),
			)
			rec, ok = record.Dataset{}, false
		}
	}()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		s.logger.Warn("Failed to parse page HTML",
			zap.String("url", pageURL.String()),
			zap.Error(err),
		)
		return record.Dataset{}, false
	}
	return Extract(doc, pageURL, s.cfg.KeepEmptyTypes)
}
