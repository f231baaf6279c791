package ckan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/openharvest/harvester/internal/record"
)

// datasetBaseURL is where a package lives when it carries no explicit
// harvest-source reference.
const datasetBaseURL = "https://data.gov.au/data/dataset/"

// coverageMaxLen bounds how many characters a raw spatial string may have
// before it is considered machine data rather than a human-readable
// coverage label.
const coverageMaxLen = 120

// Normalize derives a canonical record from one raw catalogue package.
// The second return value reports whether the candidate survives the drop
// policy: a record with empty data_types is discarded unless keepEmpty is
// set. Identifiers are assigned by the caller at keep time.
func Normalize(pkg Package, keepEmpty bool) (record.Dataset, bool) {
	title := record.Clean(firstNonEmpty(pkg.Title, pkg.Name))
	rec := record.Dataset{
		Title:         title,
		Description:   descriptionOf(pkg),
		Owner:         ownerOf(pkg),
		Topic:         topicOf(pkg),
		Year:          yearOf(title, pkg),
		License:       record.Clean(firstNonEmpty(pkg.LicenseTitle, pkg.LicenseURL)),
		Coverage:      coverageOf(pkg),
		SamplePreview: record.Preview(pkg.Notes),
		SourceURL:     sourceURLOf(pkg),
		DataTypes:     dataTypesOf(pkg.Resources),
	}
	if rec.DataTypes == "" && !keepEmpty {
		return record.Dataset{}, false
	}
	return rec, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func descriptionOf(pkg Package) string {
	return record.Clean(firstNonEmpty(pkg.Notes, pkg.Description))
}

// ownerOf prefers the publishing organization, then the named humans.
func ownerOf(pkg Package) string {
	if pkg.Organization != nil {
		if org := record.Clean(firstNonEmpty(pkg.Organization.Title, pkg.Organization.Name)); org != "" {
			return org
		}
	}
	return record.Clean(firstNonEmpty(pkg.Author, pkg.Maintainer))
}

// topicOf joins group titles, deduplicated case-insensitively with the
// first-seen casing kept.
func topicOf(pkg Package) string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range pkg.Groups {
		name := record.Clean(firstNonEmpty(g.Title, g.DisplayName, g.Name))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return strings.Join(out, ", ")
}

// yearOf looks for a 4-digit year in the title, then in the
// temporal-coverage-from field, then takes the maximum year found across
// each resource's modification timestamps.
func yearOf(title string, pkg Package) string {
	if y := record.FindYear(title); y != "" {
		return y
	}
	if y := record.FindYear(pkg.TemporalCoverageFrom); y != "" {
		return y
	}
	maxYear := 0
	for _, res := range pkg.Resources {
		for _, ts := range []string{res.LastModified, res.Created, res.MetadataModified} {
			y := record.FindYear(ts)
			if y == "" {
				continue
			}
			if n, err := strconv.Atoi(y); err == nil && n > maxYear {
				maxYear = n
			}
		}
	}
	if maxYear == 0 {
		return ""
	}
	return strconv.Itoa(maxYear)
}

func coverageOf(pkg Package) string {
	if cov := record.Clean(pkg.SpatialCoverage); cov != "" {
		return cov
	}
	if s := record.Clean(pkg.SpatialString()); s != "" && utf8.RuneCountInString(s) <= coverageMaxLen {
		return s
	}
	return ""
}

func sourceURLOf(pkg Package) string {
	if pkg.OriginalHarvestSource != nil {
		if href := record.Clean(pkg.OriginalHarvestSource.Href); href != "" {
			return href
		}
	}
	if name := firstNonEmpty(pkg.Name, pkg.ID); name != "" {
		return fmt.Sprintf("%s%s", datasetBaseURL, name)
	}
	return ""
}

// dataTypesOf unions each resource's declared format with the filename
// extensions of its URLs.
func dataTypesOf(resources []Resource) string {
	types := make(map[string]struct{})
	for _, res := range resources {
		if fmtToken := record.Clean(res.Format); fmtToken != "" {
			types[strings.ToLower(fmtToken)] = struct{}{}
		}
		if link := firstNonEmpty(res.URL, res.DownloadURL); link != "" {
			if ext := record.ExtFromURL(link); ext != "" {
				types[ext] = struct{}{}
			}
		}
	}
	return record.JoinTypes(types)
}
