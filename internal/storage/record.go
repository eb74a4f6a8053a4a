package storage

import (
	"time"

	"github.com/ppiankov/civictriage/internal/model"
)

// complaintRecord is the row shape shared by the SQL backends
type complaintRecord struct {
	ID               int64     `gorm:"column:complaint_id;primaryKey;autoIncrement:false" db:"complaint_id"`
	Description      string    `gorm:"column:description;not null" db:"description"`
	Category         string    `gorm:"column:category;not null;index" db:"category"`
	Severity         string    `gorm:"column:severity;not null" db:"severity"`
	Location         string    `gorm:"column:location;not null" db:"location"`
	UrgencyScore     int       `gorm:"column:urgency_score;not null;index" db:"urgency_score"`
	Date             time.Time `gorm:"column:created_at;not null" db:"created_at"`
	ResolutionStatus string    `gorm:"column:resolution_status;not null" db:"resolution_status"`
}

func (complaintRecord) TableName() string {
	return "complaints"
}

func recordFromModel(c model.Complaint) complaintRecord {
	return complaintRecord{
		ID:               c.ID,
		Description:      c.Description,
		Category:         string(c.Category),
		Severity:         string(c.Severity),
		Location:         c.Location,
		UrgencyScore:     c.UrgencyScore,
		Date:             c.CreatedAt,
		ResolutionStatus: string(c.ResolutionStatus),
	}
}

func (r complaintRecord) toModel() model.Complaint {
	return model.Complaint{
		ID:               r.ID,
		Description:      r.Description,
		Category:         model.Category(r.Category),
		Severity:         model.Severity(r.Severity),
		Location:         r.Location,
		UrgencyScore:     r.UrgencyScore,
		CreatedAt:        r.Date,
		ResolutionStatus: model.ResolutionStatus(r.ResolutionStatus),
	}
}
