// Package textnorm prepares complaint text for classification.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lemmatizer reduces a word to its dictionary base form
type Lemmatizer interface {
	Lemma(word string) string
}

// Normalizer lowercases, strips non-letters, drops stop-words and lemmatizes.
// It is safe for concurrent use.
type Normalizer struct {
	lemmatizer Lemmatizer
}

// New creates a normalizer backed by the English lemma dictionary
func New() (*Normalizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &Normalizer{lemmatizer: l}, nil
}

// NewWithLemmatizer creates a normalizer with a custom lemmatizer.
// A nil lemmatizer leaves tokens unchanged.
func NewWithLemmatizer(l Lemmatizer) *Normalizer {
	return &Normalizer{lemmatizer: l}
}

// Normalize returns the cleaned, lemmatized token stream joined by single spaces
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lower := cases.Lower(language.English).String(foldDiacritics(text))

	// Keep only a-z and whitespace
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lower)

	tokens := strings.Fields(cleaned)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if IsStopWord(tok) {
			continue
		}
		out = append(out, n.lemma(tok))
	}

	return strings.Join(out, " ")
}

func (n *Normalizer) lemma(word string) string {
	if n.lemmatizer == nil {
		return word
	}
	if l := n.lemmatizer.Lemma(word); l != "" {
		return l
	}
	return word
}

// foldDiacritics maps accented letters to their base letter ("café" -> "cafe")
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
