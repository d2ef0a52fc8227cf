package services

import (
	"errors"
	"time"

	"github.com/olusegunak/school_cbt/models"
	"github.com/olusegunak/school_cbt/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExamService owns the exam-session lifecycle: a session is OPEN while
// completed_at is NULL and COMPLETED once it is set. There is no way back
// from COMPLETED; a fresh attempt means a fresh session.
type ExamService struct {
	db *gorm.DB
}

func NewExamService(db *gorm.DB) *ExamService {
	return &ExamService{db: db}
}

// StartOrResume returns the student's most recent open session for the
// subject when its time window is still running, otherwise creates a new
// session starting now. Resuming does not touch started_at, so repeated
// navigation cannot stretch the timer.
func (s *ExamService) StartOrResume(subjectID, studentID uuid.UUID, now time.Time) (*models.ExamSession, error) {
	var subject models.Subject
	if err := s.db.First(&subject, "id = ?", subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	var existing models.ExamSession
	err := s.db.
		Where("subject_id = ? AND student_id = ? AND completed_at IS NULL", subject.ID, studentID).
		Order("started_at DESC").
		First(&existing).Error
	if err == nil {
		endTime := existing.StartedAt.Add(time.Duration(subject.DurationMinutes) * time.Minute)
		if endTime.After(now) {
			return &existing, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := models.ExamSession{
		SubjectID: subject.ID,
		StudentID: studentID,
		StartedAt: now,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	websocket.PublishExamEvent(websocket.ExamEvent{
		Type:      websocket.EventSessionStarted,
		SessionID: session.ID,
		SubjectID: subject.ID,
		Subject:   subject.Name,
		StudentID: studentID,
		At:        now,
	})

	return &session, nil
}

// RemainingSeconds computes the advisory time left for a session entirely
// server-side, so client clock skew cannot shorten or extend the exam.
// A session that has hit zero with no responses recorded is taken to be one
// that was created but never actually sat: its started_at is reset to now
// and the full window granted again. In practice this fires at most once;
// any later call either finds responses or a fresh non-zero deadline.
func (s *ExamService) RemainingSeconds(session *models.ExamSession, subject *models.Subject, now time.Time) (int, error) {
	endTime := session.StartedAt.Add(time.Duration(subject.DurationMinutes) * time.Minute)
	remaining := int(endTime.Sub(now).Seconds())
	if remaining > 0 {
		return remaining, nil
	}

	var count int64
	if err := s.db.Model(&models.Response{}).Where("session_id = ?", session.ID).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	session.StartedAt = now
	if err := s.db.Model(&models.ExamSession{}).Where("id = ?", session.ID).
		Update("started_at", now).Error; err != nil {
		return 0, err
	}
	return subject.DurationMinutes * 60, nil
}

// RecordResponse upserts the student's option choice for one question in an
// open session. Later submissions replace the earlier row; there is never
// more than one Response per (session, question).
func (s *ExamService) RecordResponse(sessionID, questionID, selectedOptionID uuid.UUID) error {
	var session models.ExamSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.IsCompleted() {
		return ErrSessionCompleted
	}
	return s.upsertResponse(s.db, sessionID, questionID, selectedOptionID)
}

func (s *ExamService) upsertResponse(tx *gorm.DB, sessionID, questionID, selectedOptionID uuid.UUID) error {
	var option models.Option
	if err := tx.First(&option, "id = ? AND question_id = ?", selectedOptionID, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionNotFound
		}
		return err
	}

	var existing models.Response
	err := tx.First(&existing, "session_id = ? AND question_id = ?", sessionID, questionID).Error
	if err == nil {
		existing.SelectedOptionID = selectedOptionID
		return tx.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&models.Response{
		SessionID:        sessionID,
		QuestionID:       questionID,
		SelectedOptionID: selectedOptionID,
	}).Error
}

// Submit records the supplied answers, grades the subject's full question
// set against the persisted responses and caches the result on the session.
// This is the single authoritative persist point for a completed session's
// score. Submitting an already-completed session is allowed and overwrites
// the cached score with a fresh computation; no audit trail of the earlier
// result is kept.
func (s *ExamService) Submit(sessionID, studentID uuid.UUID, answers map[uuid.UUID]uuid.UUID, now time.Time) (*models.ExamSession, ScoreResult, error) {
	var session models.ExamSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ScoreResult{}, ErrSessionNotFound
		}
		return nil, ScoreResult{}, err
	}
	if session.StudentID != studentID {
		return nil, ScoreResult{}, ErrNotSessionOwner
	}

	var subject models.Subject
	if err := s.db.First(&subject, "id = ?", session.SubjectID).Error; err != nil {
		return nil, ScoreResult{}, err
	}

	var questions []models.Question
	if err := s.db.Preload("Options").Where("subject_id = ?", session.SubjectID).Find(&questions).Error; err != nil {
		return nil, ScoreResult{}, err
	}

	var result ScoreResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, q := range questions {
			selected, ok := answers[q.ID]
			if !ok {
				// unanswered questions are simply left without a row
				continue
			}
			if err := s.upsertResponse(tx, session.ID, q.ID, selected); err != nil {
				return err
			}
		}

		responses, err := loadResponseMap(tx, session.ID)
		if err != nil {
			return err
		}

		result = Score(questions, responses)
		session.CompletedAt = &now
		session.TotalQuestions = &result.Total
		session.CorrectAnswers = &result.Correct
		session.ScorePercentage = &result.Percentage
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, ScoreResult{}, err
	}

	websocket.PublishExamEvent(websocket.ExamEvent{
		Type:      websocket.EventSessionSubmitted,
		SessionID: session.ID,
		SubjectID: subject.ID,
		Subject:   subject.Name,
		StudentID: studentID,
		Score:     &result.Percentage,
		At:        now,
	})

	return &session, result, nil
}

// GetSessionForStudent loads a session and enforces ownership.
func (s *ExamService) GetSessionForStudent(sessionID, studentID uuid.UUID) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, ErrNotSessionOwner
	}
	return &session, nil
}

// loadResponseMap reads every persisted response for a session into the
// question id → selected option id shape the grading engine consumes.
func loadResponseMap(tx *gorm.DB, sessionID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var rows []models.Response
	if err := tx.Where("session_id = ?", sessionID).Find(&rows).Error; err != nil {
		return nil, err
	}
	m := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, r := range rows {
		m[r.QuestionID] = r.SelectedOptionID
	}
	return m, nil
}
