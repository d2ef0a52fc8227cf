package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExamSession is one student's timed attempt at one subject. The three score
// fields are a cache filled in when the session completes; sessions created
// before score caching existed have them NULL and are repaired by the
// backfill job or recomputed on read.
type ExamSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	TotalQuestions  *int     `json:"total_questions"`
	CorrectAnswers  *int     `json:"correct_answers"`
	ScorePercentage *float64 `json:"score_percentage"`

	Subject Subject `gorm:"foreignkey:SubjectID" json:"-"`
	Student User    `gorm:"foreignkey:StudentID" json:"-"`
}

func (s *ExamSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *ExamSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// HasScores reports whether all three cached score fields are populated.
func (s *ExamSession) HasScores() bool {
	return s.TotalQuestions != nil && s.CorrectAnswers != nil && s.ScorePercentage != nil
}
