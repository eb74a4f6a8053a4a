package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/civictriage/internal/cache"
	"github.com/ppiankov/civictriage/internal/logging"
	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/worker"
	"github.com/ppiankov/civictriage/internal/zeroshot"
)

// Normalizer prepares text for classification
type Normalizer interface {
	Normalize(text string) string
}

// Ranking is the provider's view of one text
type Ranking struct {
	Normalized string
	Labels     []zeroshot.LabelScore
	Cached     bool
}

// Category resolves the top label to a candidate category.
// ok is false for an empty ranking or a label outside the candidates.
func (r Ranking) Category() (category model.Category, confidence float64, ok bool) {
	if len(r.Labels) == 0 {
		return model.CategoryUnknown, 0.0, false
	}
	top := r.Labels[0]
	category, ok = model.ParseCategory(top.Label)
	if !ok {
		return model.CategoryUnknown, 0.0, false
	}
	return category, top.Score, true
}

// ClassifierOptions holds the optional collaborators of a CategoryClassifier
type ClassifierOptions struct {
	Cache    cache.Cache     // nil disables caching
	CacheTTL time.Duration   // 0 uses the cache default
	Limiter  *worker.Limiter // nil disables rate limiting
	Model    string
	Logger   logging.Logger
}

// CategoryClassifier maps a complaint description to one of the candidate categories
type CategoryClassifier struct {
	provider   zeroshot.Provider
	normalizer Normalizer
	cache      cache.Cache
	cacheTTL   time.Duration
	limiter    *worker.Limiter
	model      string
	logger     logging.Logger
}

// NewCategoryClassifier wires a provider and normalizer together
func NewCategoryClassifier(provider zeroshot.Provider, normalizer Normalizer, opts ClassifierOptions) *CategoryClassifier {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CategoryClassifier{
		provider:   provider,
		normalizer: normalizer,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		limiter:    opts.Limiter,
		model:      opts.Model,
		logger:     logger.With(logging.String("provider", provider.Name())),
	}
}

// Classify returns the top category and its confidence.
// An empty ranking, a reply without a usable answer or a label outside the
// candidates yields (Unknown, 0). Any other provider failure is returned so
// no record is built from a classification that never happened.
func (c *CategoryClassifier) Classify(ctx context.Context, text string) (model.Category, float64, error) {
	ranking, err := c.Rank(ctx, text)
	if err != nil {
		if errors.Is(err, zeroshot.ErrNoResult) {
			c.logger.Warn("classifier gave no usable answer, falling back to Unknown", logging.Error(err))
			return model.CategoryUnknown, 0.0, nil
		}
		return model.CategoryUnknown, 0.0, fmt.Errorf("classify complaint: %w", err)
	}

	category, confidence, ok := ranking.Category()
	if !ok {
		if len(ranking.Labels) == 0 {
			c.logger.Debug("classifier returned no labels", logging.String("normalized", ranking.Normalized))
		} else {
			c.logger.Warn("classifier returned a label outside the candidates", logging.String("label", ranking.Labels[0].Label))
		}
		return model.CategoryUnknown, 0.0, nil
	}

	return category, confidence, nil
}

// Rank normalizes text and asks the provider to rank the candidate labels.
// Successful non-empty rankings are cached.
func (c *CategoryClassifier) Rank(ctx context.Context, text string) (Ranking, error) {
	ranking := Ranking{Normalized: c.normalizer.Normalize(text)}
	if ranking.Normalized == "" {
		return ranking, nil
	}

	var key string
	if c.cache != nil {
		key = cache.ClassificationKey(c.provider.Name(), c.model, ranking.Normalized)
		var cached []zeroshot.LabelScore
		if cache.GetJSON(c.cache, key, &cached) && len(cached) > 0 {
			ranking.Labels = cached
			ranking.Cached = true
			return ranking, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.provider.Name()); err != nil {
			return ranking, err
		}
	}

	start := time.Now()
	resp, err := c.provider.Classify(ctx, zeroshot.ClassifyRequest{
		Text:       ranking.Normalized,
		Labels:     model.CandidateLabels(),
		MultiLabel: false,
		Model:      c.model,
	})
	if err != nil {
		return ranking, err
	}
	if resp == nil {
		return ranking, nil
	}
	if top, ok := resp.Top(); ok {
		c.logger.Debug("classified",
			logging.String("top_label", top.Label),
			logging.Float64("top_score", top.Score),
			logging.Duration("took", time.Since(start)),
			logging.Int("tokens", resp.TokensUsed))
	}

	ranking.Labels = resp.Ranked

	if c.cache != nil && len(resp.Ranked) > 0 {
		if err := cache.SetJSON(c.cache, key, resp.Ranked, c.cacheTTL); err != nil {
			c.logger.Warn("cache write failed", logging.Error(err))
		}
	}

	return ranking, nil
}
