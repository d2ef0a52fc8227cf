package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportArtifact records a report-card PDF that was archived to Cloudinary.
type ReportArtifact struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	ArtifactURL string    `gorm:"size:512;not null" json:"artifact_url"`
	GeneratedAt time.Time `gorm:"not null" json:"generated_at"`

	Student User `gorm:"foreignkey:StudentID" json:"-"`
}

func (a *ReportArtifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
