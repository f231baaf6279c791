// Package ckan ingests dataset metadata from CKAN package_search
// endpoints: it walks the paginated search protocol and normalizes each
// raw package into the canonical record schema.
package ckan

import (
	"encoding/json"
	"fmt"
)

// Organization describes the publishing body attached to a package.
type Organization struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Group is a CKAN topic grouping.
type Group struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	DisplayName string `json:"display_name"`
}

// Resource is one downloadable artifact attached to a package.
type Resource struct {
	Format           string `json:"format"`
	URL              string `json:"url"`
	DownloadURL      string `json:"download_url"`
	LastModified     string `json:"last_modified"`
	Created          string `json:"created"`
	MetadataModified string `json:"metadata_modified"`
}

// HarvestSource points back at the catalogue a package was harvested from.
type HarvestSource struct {
	Href string `json:"href"`
}

// Package is the raw catalogue unit returned by package_search. It is
// externally owned, read-only input to the normalizer; optional fields
// are pointers so absence stays distinguishable from emptiness.
type Package struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Title                 string          `json:"title"`
	Notes                 string          `json:"notes"`
	Description           string          `json:"description"`
	Author                string          `json:"author"`
	Maintainer            string          `json:"maintainer"`
	LicenseTitle          string          `json:"license_title"`
	LicenseURL            string          `json:"license_url"`
	TemporalCoverageFrom  string          `json:"temporal_coverage_from"`
	SpatialCoverage       string          `json:"spatial_coverage"`
	Spatial               json.RawMessage `json:"spatial"`
	Organization          *Organization   `json:"organization"`
	Groups                []Group         `json:"groups"`
	Resources             []Resource      `json:"resources"`
	OriginalHarvestSource *HarvestSource  `json:"original_harvest_source"`
}

// SpatialString returns the spatial field when it is a plain string.
// Catalogues frequently put a GeoJSON object there instead, which is not
// usable as human-readable coverage, so anything but a string yields "".
func (p Package) SpatialString() string {
	if len(p.Spatial) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Spatial, &s); err != nil {
		return ""
	}
	return s
}

// searchResult is the inner payload of a package_search response. Results
// is a pointer so a missing results key is detectable as a protocol
// violation, distinct from an empty page.
type searchResult struct {
	Count   *int       `json:"count"`
	Results *[]Package `json:"results"`
}

// searchResponse is the package_search envelope.
type searchResponse struct {
	Success *bool         `json:"success"`
	Result  *searchResult `json:"result"`
}

// ProtocolError reports a catalogue response that is missing the expected
// package_search shape or that reports a failure indicator.
type ProtocolError struct {
	Source string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("catalogue response from %s: %s", e.Source, e.Reason)
}

// ValidationError reports CLI input that is neither a recognized
// package_search response nor a bare package list.
type ValidationError struct {
	Source string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unrecognized input structure from %s: expected a package_search response or a package list", e.Source)
}
