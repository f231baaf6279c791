package ckan

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeYearPrecedence(t *testing.T) {
	t.Parallel()

	// Title wins over resource timestamps.
	pkg := Package{
		Title: "2023 Annual Report",
		Resources: []Resource{
			{Format: "csv", LastModified: "2024-03-01T00:00:00"},
		},
	}
	rec, ok := Normalize(pkg, false)
	require.True(t, ok)
	assert.Equal(t, "2023", rec.Year)

	// Without a title year, the temporal coverage field is next.
	pkg.Title = "Annual Report"
	pkg.TemporalCoverageFrom = "2019-01-01"
	rec, ok = Normalize(pkg, false)
	require.True(t, ok)
	assert.Equal(t, "2019", rec.Year)

	// Otherwise the maximum year across resource timestamps wins.
	pkg.TemporalCoverageFrom = ""
	pkg.Resources = []Resource{
		{Format: "csv", Created: "2018-05-05", LastModified: "2021-02-02"},
		{Format: "csv", MetadataModified: "2020-01-01"},
	}
	rec, ok = Normalize(pkg, false)
	require.True(t, ok)
	assert.Equal(t, "2021", rec.Year)
}

func TestNormalizeOwnerFallbackChain(t *testing.T) {
	t.Parallel()

	base := Package{Resources: []Resource{{Format: "csv"}}}

	pkg := base
	pkg.Organization = &Organization{Title: "Bureau of Things", Name: "bot"}
	pkg.Author = "A. Author"
	rec, _ := Normalize(pkg, false)
	assert.Equal(t, "Bureau of Things", rec.Owner)

	pkg.Organization = &Organization{Name: "bot"}
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "bot", rec.Owner)

	pkg.Organization = nil
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "A. Author", rec.Owner)

	pkg.Author = ""
	pkg.Maintainer = "M. Maintainer"
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "M. Maintainer", rec.Owner)
}

func TestNormalizeTopicDedupesCaseInsensitively(t *testing.T) {
	t.Parallel()

	pkg := Package{
		Groups: []Group{
			{Title: "Health"},
			{Title: "health"},
			{DisplayName: "Transport"},
			{Name: "transport"},
		},
		Resources: []Resource{{Format: "csv"}},
	}
	rec, ok := Normalize(pkg, false)
	require.True(t, ok)
	assert.Equal(t, "Health, Transport", rec.Topic)
}

func TestNormalizeLicenseAndTitleFallbacks(t *testing.T) {
	t.Parallel()

	pkg := Package{
		Name:       "my-dataset",
		LicenseURL: "https://licenses.example/cc-by",
		Resources:  []Resource{{Format: "csv"}},
	}
	rec, ok := Normalize(pkg, false)
	require.True(t, ok)
	assert.Equal(t, "my-dataset", rec.Title, "package name backs an empty title")
	assert.Equal(t, "https://licenses.example/cc-by", rec.License)

	pkg.LicenseTitle = "Creative Commons Attribution"
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "Creative Commons Attribution", rec.License)
}

func TestNormalizeCoverage(t *testing.T) {
	t.Parallel()

	base := Package{Resources: []Resource{{Format: "csv"}}}

	pkg := base
	pkg.SpatialCoverage = "New South Wales"
	rec, _ := Normalize(pkg, false)
	assert.Equal(t, "New South Wales", rec.Coverage)

	// A short spatial string is an acceptable fallback.
	pkg = base
	pkg.Spatial = json.RawMessage(`"Victoria"`)
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "Victoria", rec.Coverage)

	// GeoJSON objects are machine data, not coverage labels.
	pkg = base
	pkg.Spatial = json.RawMessage(`{"type":"Polygon","coordinates":[]}`)
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "", rec.Coverage)

	// Overly long spatial strings are rejected.
	pkg = base
	long, err := json.Marshal(strings.Repeat("x", 200))
	require.NoError(t, err)
	pkg.Spatial = json.RawMessage(long)
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "", rec.Coverage)

	// The length cap counts characters, not bytes: 100 CJK characters
	// exceed 120 bytes but still make an acceptable label.
	pkg = base
	multibyte := strings.Repeat("域", 100)
	encoded, err := json.Marshal(multibyte)
	require.NoError(t, err)
	pkg.Spatial = json.RawMessage(encoded)
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, multibyte, rec.Coverage)
}

func TestNormalizeSourceURL(t *testing.T) {
	t.Parallel()

	pkg := Package{
		Name:                  "my-dataset",
		OriginalHarvestSource: &HarvestSource{Href: "https://upstream.example/ds/1"},
		Resources:             []Resource{{Format: "csv"}},
	}
	rec, _ := Normalize(pkg, false)
	assert.Equal(t, "https://upstream.example/ds/1", rec.SourceURL)

	pkg.OriginalHarvestSource = nil
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "https://data.gov.au/data/dataset/my-dataset", rec.SourceURL)

	pkg.Name = ""
	pkg.ID = "abc-123"
	rec, _ = Normalize(pkg, false)
	assert.Equal(t, "https://data.gov.au/data/dataset/abc-123", rec.SourceURL)
}

func TestNormalizeDataTypesUnionAndDrop(t *testing.T) {
	t.Parallel()

	pkg := Package{
		Resources: []Resource{
			{Format: "CSV", URL: "https://example.com/data.csv"},
			{Format: "", DownloadURL: "https://example.com/report.PDF"},
			{Format: "HTM"},
		},
	}
	rec, ok := Normalize(pkg, false)
	require.True(t, ok)
	assert.Equal(t, "csv, html, pdf", rec.DataTypes)

	// Empty data types drop the candidate unless the override is set.
	empty := Package{Title: "No files here"}
	_, ok = Normalize(empty, false)
	assert.False(t, ok)

	rec, ok = Normalize(empty, true)
	require.True(t, ok)
	assert.Equal(t, "", rec.DataTypes)
	assert.Equal(t, "No files here", rec.Title)
}

func TestNormalizeSamplePreviewIsBounded(t *testing.T) {
	t.Parallel()

	pkg := Package{
		Notes:     strings.Repeat("lorem ipsum ", 60),
		Resources: []Resource{{Format: "csv"}},
	}
	rec, ok := Normalize(pkg, false)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(rec.SamplePreview)), 280)
	assert.NotContains(t, rec.SamplePreview, "  ", "whitespace must be collapsed")
}
