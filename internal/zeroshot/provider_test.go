package zeroshot

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	candidates := []string{"Water", "Roads", "Traffic"}

	tests := []struct {
		name     string
		reply    string
		wantTop  string
		wantLen  int
		wantErr  bool
		noResult bool
	}{
		{
			name:    "plain json",
			reply:   `{"labels": ["Roads", "Water"], "scores": [0.6, 0.3]}`,
			wantTop: "Roads",
			wantLen: 2,
		},
		{
			name:    "fenced and out of order",
			reply:   "```json\n{\"labels\": [\"Water\", \"Traffic\"], \"scores\": [0.1, 0.8]}\n```",
			wantTop: "Traffic",
			wantLen: 2,
		},
		{
			name:    "unknown labels dropped",
			reply:   `{"labels": ["Potholes", "Water", "Water"], "scores": [0.9, 0.5, 0.4]}`,
			wantTop: "Water",
			wantLen: 1,
		},
		{
			name:     "only unknown labels",
			reply:    `{"labels": ["Noise"], "scores": [1.0]}`,
			wantErr:  true,
			noResult: true,
		},
		{
			name:     "no json",
			reply:    "Roads",
			wantErr:  true,
			noResult: true,
		},
		{
			name:     "mismatched lengths",
			reply:    `{"labels": ["Roads", "Water"], "scores": [0.6]}`,
			wantErr:  true,
			noResult: true,
		},
		{
			name:     "malformed json",
			reply:    `{"labels": ["Roads",}`,
			wantErr:  true,
			noResult: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, err := ParseAnswer(tt.reply, candidates)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", ranked)
				}
				if tt.noResult && !errors.Is(err, ErrNoResult) {
					t.Errorf("expected ErrNoResult, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(ranked) != tt.wantLen {
				t.Errorf("expected %d labels, got %d", tt.wantLen, len(ranked))
			}
			if ranked[0].Label != tt.wantTop {
				t.Errorf("expected top %s, got %s", tt.wantTop, ranked[0].Label)
			}
		})
	}
}

func TestParseAnswer_ClampsScores(t *testing.T) {
	ranked, err := ParseAnswer(`{"labels": ["Roads", "Water", "Traffic"], "scores": [1.7, -0.2, 0.4]}`, []string{"Water", "Roads", "Traffic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(ranked))
	}
	if ranked[0].Label != "Roads" || ranked[0].Score != 1 {
		t.Errorf("expected Roads clamped to 1, got %+v", ranked[0])
	}
	if ranked[2].Label != "Water" || ranked[2].Score != 0 {
		t.Errorf("expected Water clamped to 0, got %+v", ranked[2])
	}
	for _, ls := range ranked {
		if ls.Score < 0 || ls.Score > 1 {
			t.Errorf("score out of range: %+v", ls)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(ClassifyRequest{
		Text:   "street light broken",
		Labels: []string{"Electricity", "Roads"},
	})

	for _, want := range []string{"- Electricity", "- Roads", "street light broken", "sum to 1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	multi := BuildPrompt(ClassifyRequest{Text: "x", Labels: []string{"A"}, MultiLabel: true})
	if !strings.Contains(multi, "independently") {
		t.Error("multi-label prompt should ask for independent scores")
	}
}

func TestClassifyResponse_TopEmpty(t *testing.T) {
	var resp *ClassifyResponse
	if _, ok := resp.Top(); ok {
		t.Error("nil response should have no top label")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		config  Config
		want    string
		wantErr bool
	}{
		{Config{}, "lexicon", false},
		{Config{Provider: "Lexicon"}, "lexicon", false},
		{Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{Config{Provider: "claude", APIKey: "k"}, "anthropic", false},
		{Config{Provider: "ollama"}, "ollama", false},
		{Config{Provider: "openai"}, "", true},
		{Config{Provider: "bert"}, "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(tt.config)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.config.Provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.config.Provider, err)
			continue
		}
		if p.Name() != tt.want {
			t.Errorf("%q: got provider %s, want %s", tt.config.Provider, p.Name(), tt.want)
		}
	}
}
