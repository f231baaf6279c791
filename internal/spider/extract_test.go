package spider

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func pageBase(t *testing.T) *url.URL {
	t.Helper()
	base, err := url.Parse("https://www.example.gov.au/data/fisheries-report")
	require.NoError(t, err)
	return base
}

func TestExtractScopesToContainer(t *testing.T) {
	t.Parallel()

	// The sidebar h1 and its download link sit outside the main-content
	// region and must never leak into the record.
	doc := parseDoc(t, `<html><head><title>Fallback</title></head><body>
		<div class="sidebar">
			<h1>Sidebar Heading</h1>
			<a href="/junk/sidebar.zip">zip</a>
		</div>
		<main id="main-content">
			<h1>Fisheries Catch Report 2021</h1>
			<a href="/files/catch.csv">Download CSV</a>
		</main>
	</body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "Fisheries Catch Report 2021", rec.Title)
	assert.Equal(t, "2021", rec.Year)
	assert.Equal(t, "csv", rec.DataTypes)
	assert.Equal(t, "https://www.example.gov.au/data/fisheries-report", rec.SourceURL)
}

func TestExtractTitleFallsBackToDocumentTitle(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><head><title> Quarterly   Stats </title></head><body>
		<main id="main-content"><a href="report.pdf">report</a></main>
	</body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "Quarterly Stats", rec.Title)
}

func TestExtractDetailsList(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>Hospital Admissions</h1>
		<dl class="details">
			<dt>Creator</dt><dd>Department of Health</dd>
			<dt>Publication date</dt><dd>12 March 2019</dd>
			<dt>Coverage</dt><dd>New South Wales</dd>
		</dl>
		<a class="file type-xlsx" href="/admissions">Download</a>
	</main></body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "Department of Health", rec.Owner)
	assert.Equal(t, "2019", rec.Year)
	assert.Equal(t, "New South Wales", rec.Coverage)
	assert.Equal(t, "xlsx", rec.DataTypes)
}

func TestExtractTopicDeduplicatesTags(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>Tagged</h1>
		<div class="field--name-field-tags">
			<a>Health</a><a>health</a><a>Environment</a><a></a>
		</div>
		<a href="x.csv">csv</a>
	</main></body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "Health, Environment", rec.Topic)
}

func TestExtractDataTypesUnionsClassesAndHrefs(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>Mixed Formats</h1>
		<a class="file type-csv type-json" href="/download/123">bundle</a>
		<a href="maps/regions.KML">map</a>
		<a href="/docs/guide.htm">guide</a>
		<a href="mailto:info@example.gov.au">contact</a>
	</main></body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "csv, html, json, kml", rec.DataTypes)
}

func TestExtractYearFromTimeElement(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>Undated Report</h1>
		<time datetime="2022-06-30T00:00:00Z">30 June 2022</time>
		<a href="r.pdf">pdf</a>
	</main></body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "2022", rec.Year)
}

func TestExtractSamplePreviewPrefersIntroBlock(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>Preview</h1>
		<div class="field--name-field-intro">Annual summary of catch data.</div>
		<p>Unrelated boilerplate paragraph.</p>
		<a href="d.csv">csv</a>
	</main></body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "Annual summary of catch data.", rec.SamplePreview)
	assert.Equal(t, "Annual summary of catch data.", rec.Description)
}

func TestExtractSamplePreviewFallsBackToFirstParagraph(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>Preview</h1>
		<p>First paragraph wins.</p>
		<p>Second paragraph loses.</p>
		<a href="d.csv">csv</a>
	</main></body></html>`)

	rec, kept := Extract(doc, pageBase(t), false)
	require.True(t, kept)
	assert.Equal(t, "First paragraph wins.", rec.SamplePreview)
	assert.Empty(t, rec.Description)
}

func TestExtractDropsRecordsWithoutDataTypes(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><main id="main-content">
		<h1>No Downloads Here</h1>
		<p>Just prose.</p>
	</main></body></html>`)

	_, kept := Extract(doc, pageBase(t), false)
	assert.False(t, kept)

	rec, kept := Extract(doc, pageBase(t), true)
	require.True(t, kept)
	assert.Equal(t, "No Downloads Here", rec.Title)
	assert.Empty(t, rec.DataTypes)
}
