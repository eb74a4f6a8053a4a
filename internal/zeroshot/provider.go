// Package zeroshot ranks candidate labels for a piece of text without
// task-specific training. Backends range from an offline keyword lexicon to
// hosted chat models.
package zeroshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoResult is returned when a provider produced no usable label
var ErrNoResult = errors.New("no classification result")

// Provider defines the interface for zero-shot classification backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify ranks the request labels for the request text, best first
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for a classification call
type ClassifyRequest struct {
	// Text is the (normalized) text to classify
	Text string

	// Labels are the candidate labels. Providers must not invent others.
	Labels []string

	// MultiLabel scores labels independently instead of as one distribution
	MultiLabel bool

	// Model overrides the configured model (provider-specific)
	Model string
}

// LabelScore pairs a label with its confidence
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyResponse contains the ranked labels
type ClassifyResponse struct {
	// Ranked is sorted by score, highest first
	Ranked []LabelScore

	// Model is the model that produced the ranking
	Model string

	// TokensUsed tracks token consumption (0 for offline providers)
	TokensUsed int
}

// Top returns the best label, or false when the ranking is empty
func (r *ClassifyResponse) Top() (LabelScore, bool) {
	if r == nil || len(r.Ranked) == 0 {
		return LabelScore{}, false
	}
	return r.Ranked[0], true
}

// Config holds provider configuration
type Config struct {
	// Provider name: "lexicon", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "lexicon",
		Timeout:   30,
		MaxTokens: 200,
	}
}

const systemPrompt = "You are a zero-shot text classifier for municipal complaints. You answer with JSON only."

// BuildPrompt constructs the classification prompt shared by the chat providers
func BuildPrompt(req ClassifyRequest) string {
	var b strings.Builder

	b.WriteString("Classify the complaint below against these candidate labels:\n")
	for _, label := range req.Labels {
		fmt.Fprintf(&b, "- %s\n", label)
	}

	b.WriteString("\nRULES:\n")
	b.WriteString("1. Use ONLY labels from the list above, spelled exactly as given.\n")
	if req.MultiLabel {
		b.WriteString("2. Score every label independently between 0 and 1.\n")
	} else {
		b.WriteString("2. Scores are a probability distribution over the labels and sum to 1.\n")
	}
	b.WriteString("3. Order labels from most to least likely.\n")
	b.WriteString(`4. Respond with a single JSON object: {"labels": ["..."], "scores": [0.0]}` + "\n")

	fmt.Fprintf(&b, "\nComplaint:\n%s\n", req.Text)

	return b.String()
}

type answer struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ParseAnswer extracts the JSON answer from a model reply and ranks it.
// Labels outside the candidate set are dropped.
func ParseAnswer(reply string, candidates []string) ([]LabelScore, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrNoResult)
	}

	var ans answer
	if err := json.Unmarshal([]byte(reply[start:end+1]), &ans); err != nil {
		return nil, fmt.Errorf("%w: decode answer: %v", ErrNoResult, err)
	}
	if len(ans.Labels) != len(ans.Scores) {
		return nil, fmt.Errorf("%w: answer has %d labels but %d scores", ErrNoResult, len(ans.Labels), len(ans.Scores))
	}

	allowed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		allowed[c] = true
	}

	ranked := make([]LabelScore, 0, len(ans.Labels))
	seen := make(map[string]bool)
	for i, label := range ans.Labels {
		label = strings.TrimSpace(label)
		if !allowed[label] || seen[label] {
			continue
		}
		seen[label] = true
		ranked = append(ranked, LabelScore{Label: label, Score: clampScore(ans.Scores[i])})
	}

	if len(ranked) == 0 {
		return nil, ErrNoResult
	}

	sortRanked(ranked)
	return ranked, nil
}

// clampScore bounds a model-reported score to [0, 1]
func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// sortRanked orders by score descending; equal scores keep their input order
func sortRanked(ranked []LabelScore) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
}
