package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Response records a student's option choice for one question within one
// session. At most one row exists per (session, question); re-submissions
// update the existing row.
type Response struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID        uuid.UUID `gorm:"type:uuid;not null;index:idx_session_question,unique" json:"session_id"`
	QuestionID       uuid.UUID `gorm:"type:uuid;not null;index:idx_session_question,unique" json:"question_id"`
	SelectedOptionID uuid.UUID `gorm:"type:uuid;not null" json:"selected_option_id"`

	Session  ExamSession `gorm:"foreignkey:SessionID" json:"-"`
	Question Question    `gorm:"foreignkey:QuestionID" json:"-"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
