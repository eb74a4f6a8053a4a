package zeroshot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/ppiankov/civictriage/internal/model"
)

// LexiconProvider classifies offline by scanning text for per-label vocabulary
// terms with a single Aho-Corasick pass. Terms are matched as whole words.
type LexiconProvider struct {
	matcher   *ahocorasick.Matcher
	terms     []string // Space-padded, index-aligned with termLabel
	termLabel []string
	vocabSize map[string]int
}

// DefaultVocabulary returns the built-in term lists, keyed by category label.
// Terms are in lemma form since the classifier sees normalized text.
func DefaultVocabulary() map[string][]string {
	return map[string][]string{
		string(model.CategoryWater): {
			"water", "pipe", "pipeline", "leak", "leakage", "tap", "supply", "tanker",
			"borewell", "contaminate", "contaminated", "flood", "valve", "hydrant",
		},
		string(model.CategoryElectricity): {
			"electricity", "power", "outage", "blackout", "wire", "transformer", "voltage",
			"streetlight", "street light", "light", "pole", "electric", "shock", "spark",
			"meter", "cable",
		},
		string(model.CategorySanitation): {
			"garbage", "trash", "waste", "sewage", "sewer", "drain", "dump", "litter",
			"stink", "toilet", "dustbin", "bin", "rubbish", "mosquito", "clean",
		},
		string(model.CategoryRoads): {
			"road", "pothole", "street", "pavement", "sidewalk", "footpath", "asphalt",
			"crack", "bridge", "sinkhole", "speed bump", "tar",
		},
		string(model.CategoryTraffic): {
			"traffic", "signal", "jam", "congestion", "parking", "vehicle", "car", "bus",
			"accident", "intersection", "lane", "honk", "truck", "junction",
		},
		string(model.CategoryEncroachment): {
			"encroachment", "encroach", "illegal", "occupy", "vendor", "hawker", "stall",
			"construction", "unauthorized", "squatter", "shop", "fence",
		},
		string(model.CategoryAnimalControl): {
			"dog", "stray", "animal", "cat", "cattle", "cow", "monkey", "snake", "rabid",
			"bite", "bark", "rat", "pigeon", "puppy",
		},
	}
}

// NewLexiconProvider builds the matcher. A term may belong to only one label.
func NewLexiconProvider(vocabulary map[string][]string) (*LexiconProvider, error) {
	p := &LexiconProvider{
		vocabSize: make(map[string]int, len(vocabulary)),
	}

	owner := make(map[string]string)
	for _, label := range sortedKeys(vocabulary) {
		for _, term := range vocabulary[label] {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if prev, dup := owner[term]; dup {
				return nil, fmt.Errorf("lexicon term %q listed under both %q and %q", term, prev, label)
			}
			owner[term] = label
			p.terms = append(p.terms, " "+term+" ")
			p.termLabel = append(p.termLabel, label)
			p.vocabSize[label]++
		}
	}

	if len(p.terms) == 0 {
		return nil, fmt.Errorf("lexicon vocabulary is empty")
	}

	p.matcher = ahocorasick.NewStringMatcher(p.terms)
	return p, nil
}

// Name returns the provider name
func (p *LexiconProvider) Name() string {
	return "lexicon"
}

// IsAvailable is always true; the lexicon needs no network
func (p *LexiconProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Classify scores each requested label by its share of matched terms.
// In multi-label mode a label scores by the fraction of its own vocabulary found.
// No hits yields an empty ranking.
func (p *LexiconProvider) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := p.countHits(req.Text)

	total := 0
	for _, label := range req.Labels {
		total += counts[label]
	}

	resp := &ClassifyResponse{Model: "lexicon"}
	if total == 0 {
		return resp, nil
	}

	for _, label := range req.Labels {
		hits := counts[label]
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(total)
		if req.MultiLabel {
			score = float64(hits) / float64(p.vocabSize[label])
		}
		resp.Ranked = append(resp.Ranked, LabelScore{Label: label, Score: score})
	}

	sortRanked(resp.Ranked)
	return resp, nil
}

// Matches returns the distinct vocabulary terms found in text, in vocabulary order
func (p *LexiconProvider) Matches(text string) []string {
	var out []string
	for _, idx := range p.matchIndices(text) {
		out = append(out, strings.TrimSpace(p.terms[idx]))
	}
	return out
}

func (p *LexiconProvider) countHits(text string) map[string]int {
	counts := make(map[string]int)
	for _, idx := range p.matchIndices(text) {
		counts[p.termLabel[idx]]++
	}
	return counts
}

// matchIndices returns each matched term index once, sorted
func (p *LexiconProvider) matchIndices(text string) []int {
	hits := p.matcher.Match([]byte(" " + normalizeSpaces(text) + " "))

	seen := make(map[int]bool, len(hits))
	out := make([]int, 0, len(hits))
	for _, idx := range hits {
		if idx < 0 || idx >= len(p.terms) || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// normalizeSpaces lowercases and collapses whitespace so padded terms line up
func normalizeSpaces(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
