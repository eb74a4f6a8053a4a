package zeroshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/civictriage/internal/model"
)

func newTestLexicon(t *testing.T) *LexiconProvider {
	t.Helper()
	p, err := NewLexiconProvider(DefaultVocabulary())
	require.NoError(t, err)
	return p
}

func TestLexiconProvider_Classify(t *testing.T) {
	p := newTestLexicon(t)
	labels := model.CandidateLabels()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"water", "water pipe leak near school", "Water"},
		{"electricity", "transformer spark wire hanging", "Electricity"},
		{"sanitation", "garbage dump overflow smell", "Sanitation"},
		{"roads", "huge pothole main road", "Roads"},
		{"traffic", "traffic signal jam every morning", "Traffic"},
		{"encroachment", "hawker stall block footpath illegal", "Encroachment"},
		{"animal control", "stray dog bite child", "Animal Control"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := p.Classify(context.Background(), ClassifyRequest{Text: tt.text, Labels: labels})
			require.NoError(t, err)
			top, ok := resp.Top()
			require.True(t, ok)
			assert.Equal(t, tt.want, top.Label)
		})
	}
}

func TestLexiconProvider_ScoresAreShares(t *testing.T) {
	p := newTestLexicon(t)

	resp, err := p.Classify(context.Background(), ClassifyRequest{
		Text:   "water pipe streetlight",
		Labels: []string{"Water", "Electricity"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Ranked, 2)

	assert.Equal(t, "Water", resp.Ranked[0].Label)
	assert.InDelta(t, 2.0/3.0, resp.Ranked[0].Score, 1e-9)
	assert.InDelta(t, 1.0/3.0, resp.Ranked[1].Score, 1e-9)
}

func TestLexiconProvider_NoHits(t *testing.T) {
	p := newTestLexicon(t)

	resp, err := p.Classify(context.Background(), ClassifyRequest{
		Text:   "something vague happened",
		Labels: model.CandidateLabels(),
	})
	require.NoError(t, err)
	_, ok := resp.Top()
	assert.False(t, ok)
}

func TestLexiconProvider_OnlyRequestedLabels(t *testing.T) {
	p := newTestLexicon(t)

	resp, err := p.Classify(context.Background(), ClassifyRequest{
		Text:   "water pipe",
		Labels: []string{"Roads"},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Ranked)
}

func TestLexiconProvider_WholeWords(t *testing.T) {
	p := newTestLexicon(t)

	// "cart" must not match "car", "bark" must not hit inside "embarked"
	assert.Empty(t, p.Matches("cart embarked"))
	assert.Equal(t, []string{"car"}, p.Matches("  CAR \t parked"))
}

func TestLexiconProvider_MultiLabel(t *testing.T) {
	p := newTestLexicon(t)

	resp, err := p.Classify(context.Background(), ClassifyRequest{
		Text:       "dog",
		Labels:     []string{"Animal Control"},
		MultiLabel: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Ranked, 1)
	assert.InDelta(t, 1.0/float64(len(DefaultVocabulary()["Animal Control"])), resp.Ranked[0].Score, 1e-9)
}

func TestNewLexiconProvider_DuplicateTerm(t *testing.T) {
	_, err := NewLexiconProvider(map[string][]string{
		"A": {"shared"},
		"B": {"Shared"},
	})
	assert.Error(t, err)
}

func TestNewLexiconProvider_Empty(t *testing.T) {
	_, err := NewLexiconProvider(map[string][]string{"A": {" "}})
	assert.Error(t, err)
}

func TestLexiconProvider_CanceledContext(t *testing.T) {
	p := newTestLexicon(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Classify(ctx, ClassifyRequest{Text: "water", Labels: []string{"Water"}})
	assert.ErrorIs(t, err, context.Canceled)
}
