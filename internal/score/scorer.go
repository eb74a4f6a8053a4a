// Package score derives severity and urgency for triaged complaints.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/civictriage/internal/model"
)

// Factor weights in the urgency sum
const (
	CategoryFactor = 0.4
	SeverityFactor = 0.4
	LocationFactor = 0.2
)

// Score bounds
const (
	MinUrgency = 1
	MaxUrgency = 10
)

var categoryWeights = map[model.Category]float64{
	model.CategoryElectricity:   0.9,
	model.CategoryWater:         0.8,
	model.CategorySanitation:    0.7,
	model.CategoryRoads:         0.6,
	model.CategoryTraffic:       0.5,
	model.CategoryEncroachment:  0.4,
	model.CategoryAnimalControl: 0.8,
	model.CategoryUnknown:       0.1,
}

var severityWeights = map[model.Severity]float64{
	model.SeverityCritical: 1.0,
	model.SeverityHigh:     0.8,
	model.SeverityMedium:   0.5,
	model.SeverityLow:      0.2,
}

type locationFactor struct {
	keyword string
	weight  float64
}

// locationFactors are matched in declared order; the first substring hit wins
var locationFactors = []locationFactor{
	{"hospital", 1.0},
	{"school", 0.9},
	{"park", 0.8},
	{"market", 0.7},
	{"main road", 0.6},
	{"highway", 0.6},
	{"residential area", 0.5},
	{"public place", 0.5},
	{"city entrance", 0.6},
	{"community center", 0.4},
	{"bus stop", 0.4},
	{"metro station", 0.4},
	{"industrial area", 0.3},
}

const unknownLocationWeight = 0.1

// Breakdown is the transparent scoring record behind an urgency score
type Breakdown struct {
	Category        model.Category `json:"category"`
	CategoryWeight  float64        `json:"category_weight"`
	Severity        model.Severity `json:"severity"`
	SeverityKeyword string         `json:"severity_keyword,omitempty"`
	SeverityWeight  float64        `json:"severity_weight"`
	LocationKeyword string         `json:"location_keyword,omitempty"`
	LocationWeight  float64        `json:"location_weight"`
	Raw             float64        `json:"raw"`
	Urgency         int            `json:"urgency"`
	Formula         string         `json:"formula"`
}

// String renders the breakdown on one line
func (b Breakdown) String() string {
	return fmt.Sprintf("urgency %d = max(1, round(10 * (%.1f*%.2f + %.1f*%.2f + %.1f*%.2f))) [raw %.2f]",
		b.Urgency,
		CategoryFactor, b.CategoryWeight,
		SeverityFactor, b.SeverityWeight,
		LocationFactor, b.LocationWeight,
		b.Raw)
}

// Scorer computes the 1-10 urgency of a complaint
type Scorer struct {
	severity *SeverityAssessor
}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{severity: NewSeverityAssessor()}
}

// Score returns the urgency for a complaint.
// Severity is always recomputed from description; there is no error path.
func (s *Scorer) Score(category model.Category, location string, description string) int {
	return s.Explain(category, location, description).Urgency
}

// Explain returns the urgency together with every factor that produced it
func (s *Scorer) Explain(category model.Category, location string, description string) Breakdown {
	categoryWeight, ok := categoryWeights[category]
	if !ok {
		categoryWeight = categoryWeights[model.CategoryUnknown]
	}

	severity, severityKeyword := s.severity.Match(description)
	severityWeight, ok := severityWeights[severity]
	if !ok {
		severityWeight = severityWeights[model.SeverityLow]
	}

	locationKeyword, locationWeight := LocationWeight(location)

	raw := (categoryWeight * CategoryFactor) + (severityWeight * SeverityFactor) + (locationWeight * LocationFactor)

	return Breakdown{
		Category:        category,
		CategoryWeight:  categoryWeight,
		Severity:        severity,
		SeverityKeyword: severityKeyword,
		SeverityWeight:  severityWeight,
		LocationKeyword: locationKeyword,
		LocationWeight:  locationWeight,
		Raw:             raw,
		Urgency:         scale(raw),
		Formula:         "max(1, round((0.4*category + 0.4*severity + 0.2*location) * 10))",
	}
}

// LocationWeight returns the first location-type keyword contained in location
// and its weight, or ("", 0.1) when nothing matches.
func LocationWeight(location string) (string, float64) {
	lower := strings.ToLower(location)
	for _, f := range locationFactors {
		if strings.Contains(lower, f.keyword) {
			return f.keyword, f.weight
		}
	}
	return "", unknownLocationWeight
}

// scale maps the raw weighted sum onto [MinUrgency, MaxUrgency].
// Halves round to even.
func scale(raw float64) int {
	urgency := int(math.RoundToEven(raw * 10))
	if urgency < MinUrgency {
		return MinUrgency
	}
	if urgency > MaxUrgency {
		return MaxUrgency
	}
	return urgency
}
