package model

import (
	"encoding/json"
	"time"
)

// Category is the complaint class assigned by the classifier
type Category string

const (
	CategoryWater         Category = "Water"
	CategoryElectricity   Category = "Electricity"
	CategorySanitation    Category = "Sanitation"
	CategoryRoads         Category = "Roads"
	CategoryTraffic       Category = "Traffic"
	CategoryEncroachment  Category = "Encroachment"
	CategoryAnimalControl Category = "Animal Control"
	CategoryUnknown       Category = "Unknown" // Fallback, never offered to the classifier
)

// CandidateCategories are the labels offered to the zero-shot classifier, in order
var CandidateCategories = []Category{
	CategoryWater,
	CategoryElectricity,
	CategorySanitation,
	CategoryRoads,
	CategoryTraffic,
	CategoryEncroachment,
	CategoryAnimalControl,
}

// CandidateLabels returns the candidate categories as plain strings
func CandidateLabels() []string {
	labels := make([]string, len(CandidateCategories))
	for i, c := range CandidateCategories {
		labels[i] = string(c)
	}
	return labels
}

// ParseCategory maps a label back to a candidate category.
// Anything outside the candidate set maps to CategoryUnknown.
func ParseCategory(label string) (Category, bool) {
	for _, c := range CandidateCategories {
		if string(c) == label {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// Severity is the urgency tier derived from the description
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Rank orders tiers by descending urgency (Critical = 0)
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// ResolutionStatus tracks handling of a complaint after creation
type ResolutionStatus string

const (
	StatusPending    ResolutionStatus = "Pending"
	StatusInProgress ResolutionStatus = "In Progress"
	StatusResolved   ResolutionStatus = "Resolved"
)

// UnknownLocation is stored when no location was found or provided
const UnknownLocation = "Unknown Location"

// FirstComplaintID is assigned when the store holds no records
const FirstComplaintID int64 = 1001

// DateLayout is the timestamp layout used in the tabular store and API output
const DateLayout = "2006-01-02 15:04:05"

// Complaint is a triaged civic complaint.
// Everything except ResolutionStatus is frozen after creation.
type Complaint struct {
	ID               int64            `json:"complaint_id"`
	Description      string           `json:"description"`
	Category         Category         `json:"category"`
	Severity         Severity         `json:"severity"`
	Location         string           `json:"location"`
	UrgencyScore     int              `json:"urgency_score"`
	CreatedAt        time.Time        `json:"-"`
	ResolutionStatus ResolutionStatus `json:"resolution_status"`
}

type complaintJSON struct {
	ID               int64            `json:"complaint_id"`
	Description      string           `json:"description"`
	Category         Category         `json:"category"`
	Severity         Severity         `json:"severity"`
	Location         string           `json:"location"`
	UrgencyScore     int              `json:"urgency_score"`
	Date             string           `json:"date"`
	ResolutionStatus ResolutionStatus `json:"resolution_status"`
}

// MarshalJSON renders CreatedAt as "date" in DateLayout
func (c Complaint) MarshalJSON() ([]byte, error) {
	return json.Marshal(complaintJSON{
		ID:               c.ID,
		Description:      c.Description,
		Category:         c.Category,
		Severity:         c.Severity,
		Location:         c.Location,
		UrgencyScore:     c.UrgencyScore,
		Date:             c.CreatedAt.Format(DateLayout),
		ResolutionStatus: c.ResolutionStatus,
	})
}

// UnmarshalJSON parses the "date" field back into CreatedAt
func (c *Complaint) UnmarshalJSON(data []byte) error {
	var raw complaintJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Complaint{
		ID:               raw.ID,
		Description:      raw.Description,
		Category:         raw.Category,
		Severity:         raw.Severity,
		Location:         raw.Location,
		UrgencyScore:     raw.UrgencyScore,
		ResolutionStatus: raw.ResolutionStatus,
	}
	if raw.Date != "" {
		t, err := time.ParseInLocation(DateLayout, raw.Date, time.Local)
		if err != nil {
			return err
		}
		c.CreatedAt = t
	}
	return nil
}
