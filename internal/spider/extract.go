package spider

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/openharvest/harvester/internal/record"
)

// containerSelectors lists candidate main-content regions, most specific
// first. All field extraction scopes to the first selector that matches
// so fields are never mixed across unrelated page regions; the whole
// document is the final fallback.
var containerSelectors = []string{
	"main#main-content",
	"#main-content",
	"main[role='main']",
	"article.node",
	"article[role='article']",
	"article",
	"div[role='main']",
	"section.section .region-content",
	".region.region-content",
}

var typeClassRE = regexp.MustCompile(`type-([a-z0-9]+)`)

// yearLabels are the definition-list labels consulted, in order, when the
// title carries no year.
var yearLabels = []string{"Creation Date", "Published", "Publication date", "Date"}

// Extract applies the HTML-side derivation rules to a fetched document
// whose links resolve against base. The second return value reports
// whether the candidate survives the drop policy.
func Extract(doc *goquery.Document, base *url.URL, keepEmpty bool) (record.Dataset, bool) {
	container := selectContainer(doc)

	title := extractTitle(container, doc)
	details := detailsMaps(container)
	rec := record.Dataset{
		Title:         title,
		Description:   extractDescription(container),
		Owner:         extractOwner(container, details),
		Topic:         extractTopic(container),
		Year:          extractYear(title, container, details),
		License:       record.Clean(container.Find(".field--name-field-license").Text()),
		Coverage:      extractCoverage(container, details),
		SamplePreview: extractSamplePreview(container),
		SourceURL:     base.String(),
		DataTypes:     extractDataTypes(container, base),
	}
	if rec.DataTypes == "" && !keepEmpty {
		return record.Dataset{}, false
	}
	return rec, true
}

func selectContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range containerSelectors {
		if nodes := doc.Find(sel); nodes.Length() > 0 {
			return nodes
		}
	}
	return doc.Selection
}

func extractTitle(container *goquery.Selection, doc *goquery.Document) string {
	if title := record.Clean(container.Find("h1").First().Text()); title != "" {
		return title
	}
	return record.Clean(doc.Find("title").First().Text())
}

// extractDescription reads the known intro field block; there is no
// further fallback on purpose, because generic page text makes a poor
// description.
func extractDescription(container *goquery.Selection) string {
	intro := container.Find(".field--name-field-intro, .node-intro")
	if intro.Length() == 0 {
		return ""
	}
	return record.Clean(intro.First().Text())
}

// detailsMaps builds one label->value map per dl.details block, zipping
// dt and dd entries in document order.
func detailsMaps(container *goquery.Selection) []map[string]string {
	var maps []map[string]string
	container.Find("dl.details").Each(func(_ int, dl *goquery.Selection) {
		var labels, values []string
		dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			labels = append(labels, record.Clean(dt.Text()))
		})
		dl.Find("dd").Each(func(_ int, dd *goquery.Selection) {
			values = append(values, record.Clean(dd.Text()))
		})
		m := make(map[string]string, len(labels))
		for i, label := range labels {
			if i < len(values) {
				m[label] = values[i]
			}
		}
		maps = append(maps, m)
	})
	return maps
}

func extractOwner(container *goquery.Selection, details []map[string]string) string {
	for _, m := range details {
		if owner := firstMapValue(m, "Creator", "Publisher"); owner != "" {
			return owner
		}
	}
	return record.Clean(container.Find(".field--name-field-publication-publisher").Text())
}

func extractTopic(container *goquery.Selection) string {
	seen := make(map[string]struct{})
	var out []string
	container.Find(".field--name-field-tags a").Each(func(_ int, a *goquery.Selection) {
		tag := record.Clean(a.Text())
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	})
	return strings.Join(out, ", ")
}

func extractYear(title string, container *goquery.Selection, details []map[string]string) string {
	if y := record.FindYear(title); y != "" {
		return y
	}
	for _, m := range details {
		for _, label := range yearLabels {
			if y := record.FindYear(m[label]); y != "" {
				return y
			}
		}
	}
	year := ""
	container.Find("time").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		candidates := []string{t.AttrOr("datetime", ""), t.Text()}
		for _, c := range candidates {
			if y := record.FindYear(c); y != "" {
				year = y
				return false
			}
		}
		return true
	})
	return year
}

func extractCoverage(container *goquery.Selection, details []map[string]string) string {
	for _, m := range details {
		if cov := m["Coverage"]; cov != "" {
			return cov
		}
	}
	return record.Clean(container.Find(".field--name-field-publication-coverage").Text())
}

func extractSamplePreview(container *goquery.Selection) string {
	blocks := container.Find(".field--name-field-intro, .node-intro, .summary, .description")
	if blocks.Length() > 0 {
		if text := record.Preview(blocks.First().Text()); text != "" {
			return text
		}
	}
	return record.Preview(container.Find("p").First().Text())
}

// extractDataTypes unions type-<ext> tokens from file-anchor classes with
// filename extensions parsed from every in-container anchor's resolved
// absolute URL.
func extractDataTypes(container *goquery.Selection, base *url.URL) string {
	types := make(map[string]struct{})

	container.Find("a.file").Each(func(_ int, a *goquery.Selection) {
		classes := strings.ToLower(a.AttrOr("class", ""))
		for _, m := range typeClassRE.FindAllStringSubmatch(classes, -1) {
			types[m[1]] = struct{}{}
		}
	})

	container.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href == "" {
			return
		}
		abs, err := base.Parse(href)
		if err != nil {
			return
		}
		if ext := record.ExtFromURL(abs.String()); ext != "" {
			types[ext] = struct{}{}
		}
	})

	return record.JoinTypes(types)
}

func firstMapValue(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
