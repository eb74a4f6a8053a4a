package score

import (
	"strings"

	"github.com/ppiankov/civictriage/internal/model"
)

// severityTier pairs a tier with the keywords that trigger it
type severityTier struct {
	severity model.Severity
	keywords []string
}

// severityTiers are checked in priority order; Low is the fall-through
var severityTiers = []severityTier{
	{
		severity: model.SeverityCritical,
		keywords: []string{
			"critical", "emergency", "immediate", "danger", "life threatening",
			"collapse", "explosion", "fire", "flooding", "sinkhole", "accident",
			"aggressive", "chased a child", "attacked", "bit", "rabid",
			"blocked access", "no access", "fire lane",
		},
	},
	{
		severity: model.SeverityHigh,
		keywords: []string{
			"urgent", "severe", "major", "widespread", "hazardous", "health risk",
			"no power", "no water", "overflowing", "piling up", "dangerous",
			"aggressive", "pack of dogs", "roaming",
			"significant blockage",
		},
	},
	{
		severity: model.SeverityMedium,
		keywords: []string{
			"leak", "flickering", "broken", "damaged", "minor", "nuisance",
			"slow", "congestion", "overdue", "smell", "noise", "stray",
		},
	},
}

// lowKeywords never change the tier; Match reports them for the explain output
var lowKeywords = []string{
	"minor inconvenience", "aesthetic", "faded", "suggestion", "small",
	"cosmetic", "lost pet",
}

// SeverityAssessor derives a severity tier from keyword presence
type SeverityAssessor struct {
	tiers []severityTier
}

// NewSeverityAssessor creates an assessor with the built-in keyword tiers
func NewSeverityAssessor() *SeverityAssessor {
	return &SeverityAssessor{tiers: severityTiers}
}

// Assess returns the first tier with a keyword contained in description.
// category is accepted for symmetry with the scorer and does not affect the result.
func (a *SeverityAssessor) Assess(category model.Category, description string) model.Severity {
	severity, _ := a.Match(description)
	return severity
}

// Match returns the tier and the keyword that selected it.
// A Low result names the Low keyword present, if any.
func (a *SeverityAssessor) Match(description string) (model.Severity, string) {
	lower := strings.ToLower(description)
	for _, tier := range a.tiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				return tier.severity, kw
			}
		}
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lower, kw) {
			return model.SeverityLow, kw
		}
	}
	return model.SeverityLow, ""
}
