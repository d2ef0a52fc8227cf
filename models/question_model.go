package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SubjectID        uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Text             string    `gorm:"type:text;not null" json:"text"`
	TimeLimitSeconds *int      `json:"time_limit_seconds"`

	Options []Option `gorm:"foreignkey:QuestionID" json:"options,omitempty"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
