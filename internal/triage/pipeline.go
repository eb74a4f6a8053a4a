// Package triage turns a free-text complaint into a categorized,
// scored and stored record.
package triage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/civictriage/internal/extract"
	"github.com/ppiankov/civictriage/internal/logging"
	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/score"
	"github.com/ppiankov/civictriage/internal/storage"
)

// Classifier assigns a category. An error means the classification
// capability itself was unavailable.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Category, float64, error)
}

// Options holds the optional collaborators of a Pipeline
type Options struct {
	Clock  Clock
	Logger logging.Logger
}

// Pipeline orchestrates classification, extraction, scoring and storage
type Pipeline struct {
	classifier Classifier
	locations  *extract.LocationExtractor
	severity   *score.SeverityAssessor
	scorer     *score.Scorer
	store      storage.Store
	clock      Clock
	logger     logging.Logger
}

// NewPipeline creates a pipeline over the given classifier and store
func NewPipeline(classifier Classifier, store storage.Store, opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Pipeline{
		classifier: classifier,
		locations:  extract.NewLocationExtractor(),
		severity:   score.NewSeverityAssessor(),
		scorer:     score.NewScorer(),
		store:      store,
		clock:      clock,
		logger:     logger,
	}
}

// Submit analyzes a complaint and stores it with the next id.
// A non-blank locationHint replaces the extracted location.
func (p *Pipeline) Submit(ctx context.Context, description, locationHint string) (*model.Complaint, error) {
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := p.logger.With(logging.String("request_id", requestID))

	analyzed, confidence, err := p.analyze(ctx, description, locationHint)
	if err != nil {
		log.Error("classification failed, complaint not stored", logging.Error(err))
		return nil, err
	}

	created, err := p.store.Create(ctx, func(id int64) model.Complaint {
		c := analyzed
		c.ID = id
		c.CreatedAt = p.clock.Now()
		return c
	})
	if err != nil {
		log.Error("storing complaint failed", logging.Error(err))
		return nil, fmt.Errorf("store complaint: %w", err)
	}

	log.Info("complaint submitted",
		logging.Int64("complaint_id", created.ID),
		logging.String("category", string(created.Category)),
		logging.Float64("confidence", confidence),
		logging.String("severity", string(created.Severity)),
		logging.String("location", created.Location),
		logging.Int("urgency_score", created.UrgencyScore))

	return &created, nil
}

// Triage runs the same analysis as Submit without storing anything.
// The returned complaint has ID 0.
func (p *Pipeline) Triage(ctx context.Context, description, locationHint string) (*model.Complaint, error) {
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	c, confidence, err := p.analyze(ctx, description, locationHint)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = p.clock.Now()

	p.logger.Debug("complaint triaged",
		logging.String("category", string(c.Category)),
		logging.Float64("confidence", confidence),
		logging.Int("urgency_score", c.UrgencyScore))

	return &c, nil
}

// Explain breaks down the urgency score of an analyzed complaint
func (p *Pipeline) Explain(c model.Complaint) score.Breakdown {
	return p.scorer.Explain(c.Category, c.Location, c.Description)
}

// ListAll returns every stored complaint, most urgent first.
// Equal scores keep store order.
func (p *Pipeline) ListAll(ctx context.Context) ([]model.Complaint, error) {
	records, err := p.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load complaints: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UrgencyScore > records[j].UrgencyScore
	})
	return records, nil
}

func (p *Pipeline) analyze(ctx context.Context, description, locationHint string) (model.Complaint, float64, error) {
	category, confidence, err := p.classifier.Classify(ctx, description)
	if err != nil {
		return model.Complaint{}, 0, err
	}

	// A usable hint is stored exactly as given
	location := p.locations.Extract(description)
	if strings.TrimSpace(locationHint) != "" {
		location = locationHint
	}

	severity := p.severity.Assess(category, description)
	urgency := p.scorer.Score(category, location, description)

	return model.Complaint{
		Description:      description,
		Category:         category,
		Severity:         severity,
		Location:         location,
		UrgencyScore:     urgency,
		ResolutionStatus: model.StatusPending,
	}, confidence, nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return nil
}
