// Package extract pulls structured hints out of raw complaint text.
package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/civictriage/internal/model"
)

// locationKeywords suggest that a location phrase is nearby, in scan order
var locationKeywords = []string{
	"ward", "sector", "road", "park", "area", "complex", "street",
	"intersection", "neighborhood", "city", "town", "hospital", "school", "market",
}

// locationWindow captures up to two words either side of a keyword
type locationWindow struct {
	keyword string
	pattern *regexp.Regexp
}

// RE2 word classes are ASCII only, so words and boundaries are spelled out
// with Unicode classes and the window is read from the first group.
const (
	wordChars    = `[\p{L}\p{N}_]`
	nonWordChars = `[^\p{L}\p{N}_]`
	spaceChars   = `[\s\p{Z}]`
)

var locationWindows = func() []locationWindow {
	windows := make([]locationWindow, len(locationKeywords))
	for i, kw := range locationKeywords {
		expr := `(?:^|` + nonWordChars + `)` +
			`((?:` + wordChars + `+` + spaceChars + `+){0,2}` +
			regexp.QuoteMeta(kw) +
			`(?:` + spaceChars + `+` + wordChars + `+){0,2})` +
			`(?:$|` + nonWordChars + `)`
		windows[i] = locationWindow{
			keyword: kw,
			pattern: regexp.MustCompile(expr),
		}
	}
	return windows
}()

// LocationExtractor finds location phrases around indicator keywords
type LocationExtractor struct {
	windows []locationWindow
}

// NewLocationExtractor creates a location extractor with the built-in keyword list
func NewLocationExtractor() *LocationExtractor {
	return &LocationExtractor{windows: locationWindows}
}

// Extract returns the comma-joined location phrases found in text,
// or model.UnknownLocation when no keyword anchors a phrase.
func (e *LocationExtractor) Extract(text string) string {
	phrases := e.Phrases(text)
	if len(phrases) == 0 {
		return model.UnknownLocation
	}
	return strings.Join(phrases, ", ")
}

// Phrases returns each distinct keyword window in keyword order.
// Overlapping windows from adjacent keywords are kept; only exact duplicates are dropped.
func (e *LocationExtractor) Phrases(text string) []string {
	lower := strings.ToLower(text)

	var phrases []string
	seen := make(map[string]bool)
	for _, w := range e.windows {
		if !strings.Contains(lower, w.keyword) {
			continue
		}
		groups := w.pattern.FindStringSubmatch(lower)
		if groups == nil {
			continue
		}
		match := strings.TrimSpace(groups[1])
		if match == "" || seen[match] {
			continue
		}
		seen[match] = true
		phrases = append(phrases, match)
	}

	return phrases
}
