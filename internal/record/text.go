package record

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// PreviewLimit caps the sample_preview field.
const PreviewLimit = 280

var (
	yearRE         = regexp.MustCompile(`\b(19|20|21)\d{2}\b`)
	trailingJunk   = regexp.MustCompile(`[^a-z0-9]+$`)
	alphanumericRE = regexp.MustCompile(`^[a-z0-9]+$`)
)

// typeAliases normalizes spelling variants of format tokens.
var typeAliases = map[string]string{
	"htm": "html",
}

// Clean collapses all interior whitespace runs to single spaces and trims
// the result.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FindYear returns the first standalone 4-digit year (19xx/20xx/21xx) in s,
// or the empty string.
func FindYear(s string) string {
	return yearRE.FindString(s)
}

// Preview collapses whitespace and truncates to PreviewLimit characters.
func Preview(s string) string {
	cleaned := Clean(s)
	runes := []rune(cleaned)
	if len(runes) > PreviewLimit {
		return string(runes[:PreviewLimit])
	}
	return cleaned
}

// ExtFromURL extracts a plausible filename extension (1-5 alphanumeric
// characters) from the path component of raw. Trailing punctuation left
// over from sloppy markup is stripped before validation.
func ExtFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := strings.ToLower(u.Path)
	i := strings.LastIndex(p, ".")
	if i < 0 {
		return ""
	}
	ext := trailingJunk.ReplaceAllString(p[i+1:], "")
	if len(ext) < 1 || len(ext) > 5 || !alphanumericRE.MatchString(ext) {
		return ""
	}
	return ext
}

// NormalizeType lowercases a format token and applies the alias table.
func NormalizeType(t string) string {
	t = strings.ToLower(Clean(t))
	if alias, ok := typeAliases[t]; ok {
		return alias
	}
	return t
}

// JoinTypes alias-normalizes the set of format tokens and returns them
// sorted and comma-joined, e.g. "csv, pdf".
func JoinTypes(set map[string]struct{}) string {
	normalized := make(map[string]struct{}, len(set))
	for t := range set {
		if n := NormalizeType(t); n != "" {
			normalized[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(normalized))
	for t := range normalized {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
