package services

import (
	"errors"
	"time"

	"github.com/olusegunak/school_cbt/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportRow is one subject's line on a student's report card: the latest
// completed session's score and grade.
type ReportRow struct {
	Subject     models.Subject `json:"subject"`
	SessionID   uuid.UUID      `json:"session_id"`
	CompletedAt time.Time      `json:"completed_at"`
	Total       int            `json:"total_questions"`
	Correct     int            `json:"correct_answers"`
	Percentage  float64        `json:"percentage"`
	Grade       string         `json:"grade"`
}

// QuestionDetail is one question's line on a session report.
type QuestionDetail struct {
	Question      models.Question `json:"question"`
	Selected      *models.Option  `json:"selected"`
	CorrectOption *models.Option  `json:"correct_option"`
	IsCorrect     bool            `json:"is_correct"`
}

type SessionReport struct {
	Session    models.ExamSession `json:"session"`
	Subject    models.Subject     `json:"subject"`
	Details    []QuestionDetail   `json:"details"`
	Total      int                `json:"total_questions"`
	Correct    int                `json:"correct_answers"`
	Percentage float64            `json:"percentage"`
	Grade      string             `json:"grade"`
}

// NigeriaGrade maps a percentage to the WAEC grade ladder. Total over
// [0, 100] and monotonic.
func NigeriaGrade(percentage float64) string {
	switch {
	case percentage >= 75:
		return "A1"
	case percentage >= 70:
		return "B2"
	case percentage >= 65:
		return "B3"
	case percentage >= 60:
		return "C4"
	case percentage >= 55:
		return "C5"
	case percentage >= 50:
		return "C6"
	case percentage >= 45:
		return "D7"
	case percentage >= 40:
		return "E8"
	default:
		return "F9"
	}
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// BuildReportRows builds one row per subject from the student's most
// recently completed session. Subjects the student never completed are left
// off the report. Cached session scores are preferred; sessions persisted
// before score caching existed are recomputed from their responses, the same
// computation Submit would have cached.
func (s *ReportService) BuildReportRows(studentID uuid.UUID, subjects []models.Subject) ([]ReportRow, error) {
	var rows []ReportRow
	for _, subject := range subjects {
		var sess models.ExamSession
		err := s.db.
			Where("subject_id = ? AND student_id = ? AND completed_at IS NOT NULL", subject.ID, studentID).
			Order("completed_at DESC, id DESC").
			First(&sess).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		total, correct, percentage, err := s.sessionScore(&sess)
		if err != nil {
			return nil, err
		}

		rows = append(rows, ReportRow{
			Subject:     subject,
			SessionID:   sess.ID,
			CompletedAt: *sess.CompletedAt,
			Total:       total,
			Correct:     correct,
			Percentage:  percentage,
			Grade:       NigeriaGrade(percentage),
		})
	}
	return rows, nil
}

// Overall is the unweighted mean of the row percentages, 0 with no rows.
func Overall(rows []ReportRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rows {
		sum += r.Percentage
	}
	return sum / float64(len(rows))
}

// SessionReport builds the per-question breakdown for one session.
func (s *ReportService) SessionReport(sessionID uuid.UUID) (*SessionReport, error) {
	var sess models.ExamSession
	if err := s.db.First(&sess, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var subject models.Subject
	if err := s.db.First(&subject, "id = ?", sess.SubjectID).Error; err != nil {
		return nil, err
	}

	total, correct, percentage, err := s.sessionScore(&sess)
	if err != nil {
		return nil, err
	}

	var questions []models.Question
	if err := s.db.Preload("Options").Where("subject_id = ?", sess.SubjectID).Find(&questions).Error; err != nil {
		return nil, err
	}

	responses, err := loadResponseMap(s.db, sess.ID)
	if err != nil {
		return nil, err
	}

	details := make([]QuestionDetail, 0, len(questions))
	for _, q := range questions {
		d := QuestionDetail{Question: q}
		for i := range q.Options {
			opt := q.Options[i]
			if opt.IsCorrect && d.CorrectOption == nil {
				d.CorrectOption = &opt
			}
			if selectedID, ok := responses[q.ID]; ok && opt.ID == selectedID {
				d.Selected = &opt
			}
		}
		d.IsCorrect = d.Selected != nil && d.CorrectOption != nil && d.Selected.ID == d.CorrectOption.ID
		details = append(details, d)
	}

	return &SessionReport{
		Session:    sess,
		Subject:    subject,
		Details:    details,
		Total:      total,
		Correct:    correct,
		Percentage: percentage,
		Grade:      NigeriaGrade(percentage),
	}, nil
}

// sessionScore returns the cached score fields, falling back to a fresh
// grading run for sessions that predate score caching.
func (s *ReportService) sessionScore(sess *models.ExamSession) (int, int, float64, error) {
	if sess.HasScores() {
		return *sess.TotalQuestions, *sess.CorrectAnswers, *sess.ScorePercentage, nil
	}

	var questions []models.Question
	if err := s.db.Preload("Options").Where("subject_id = ?", sess.SubjectID).Find(&questions).Error; err != nil {
		return 0, 0, 0, err
	}
	responses, err := loadResponseMap(s.db, sess.ID)
	if err != nil {
		return 0, 0, 0, err
	}
	result := Score(questions, responses)
	return result.Total, result.Correct, result.Percentage, nil
}
