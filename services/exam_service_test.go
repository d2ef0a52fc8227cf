package services

import (
	"errors"
	"testing"
	"time"

	"github.com/olusegunak/school_cbt/models"
	"github.com/google/uuid"
)

func TestStartOrResumeReturnsOpenSessionWithinWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	t0 := mustTime(t, "2024-03-01T09:00:00Z")
	first, err := svc.StartOrResume(subject.ID, student.ID, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := svc.StartOrResume(subject.ID, student.ID, t0.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resume within the window must return the same session, got %s and %s", first.ID, second.ID)
	}
	if !second.StartedAt.Equal(first.StartedAt) {
		t.Fatalf("resume must not move started_at")
	}
}

func TestStartOrResumeCreatesFreshSessionAfterExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	t0 := mustTime(t, "2024-03-01T09:00:00Z")
	first, err := svc.StartOrResume(subject.ID, student.ID, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	later := t0.Add(46 * time.Minute)
	second, err := svc.StartOrResume(subject.ID, student.ID, later)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expired session must not be resumed")
	}
	if !second.StartedAt.Equal(later) {
		t.Fatalf("fresh session should start at now, got %v", second.StartedAt)
	}
}

func TestStartOrResumeUnknownSubject(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)

	_, err := svc.StartOrResume(uuid.New(), student.ID, time.Now())
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("got %v, want ErrSubjectNotFound", err)
	}
}

func TestRemainingSecondsCountsDown(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	t0 := mustTime(t, "2024-03-01T09:00:00Z")
	session, err := svc.StartOrResume(subject.ID, student.ID, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	remaining, err := svc.RemainingSeconds(session, &subject, t0.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 35*60 {
		t.Fatalf("got %d seconds remaining, want %d", remaining, 35*60)
	}
}

func TestRemainingSecondsResetsExpiredUnansweredSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	t0 := mustTime(t, "2024-03-01T09:00:00Z")
	session, err := svc.StartOrResume(subject.ID, student.ID, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	now := t0.Add(2 * time.Hour)
	remaining, err := svc.RemainingSeconds(session, &subject, now)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 45*60 {
		t.Fatalf("expired unanswered session should get the full window back, got %d", remaining)
	}

	var reloaded models.ExamSession
	if err := db.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.StartedAt.Equal(now) {
		t.Fatalf("started_at not reset: got %v, want %v", reloaded.StartedAt, now)
	}
}

func TestRemainingSecondsDoesNotResetAnsweredSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	t0 := mustTime(t, "2024-03-01T09:00:00Z")
	session, err := svc.StartOrResume(subject.ID, student.ID, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	questions := loadQuestions(t, db, subject.ID)
	if err := svc.RecordResponse(session.ID, questions[0].ID, optionID(t, questions[0], true)); err != nil {
		t.Fatalf("record: %v", err)
	}

	remaining, err := svc.RemainingSeconds(session, &subject, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("session with answers must expire, got %d", remaining)
	}

	var reloaded models.ExamSession
	if err := db.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.StartedAt.Equal(session.StartedAt) {
		t.Fatalf("started_at must not move once answers exist")
	}
}

func TestRecordResponseUpsertsSingleRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 1)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q := loadQuestions(t, db, subject.ID)[0]
	wrong := optionID(t, q, false)
	right := optionID(t, q, true)

	if err := svc.RecordResponse(session.ID, q.ID, wrong); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := svc.RecordResponse(session.ID, q.ID, right); err != nil {
		t.Fatalf("second record: %v", err)
	}

	var rows []models.Response
	if err := db.Where("session_id = ?", session.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load responses: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d response rows for one question, want 1", len(rows))
	}
	if rows[0].SelectedOptionID != right {
		t.Fatalf("last writer must win: got %s, want %s", rows[0].SelectedOptionID, right)
	}
}

func TestRecordResponseRejectsForeignOption(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	questions := loadQuestions(t, db, subject.ID)
	// option belongs to a different question
	err = svc.RecordResponse(session.ID, questions[0].ID, optionID(t, questions[1], true))
	if !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("got %v, want ErrOptionNotFound", err)
	}
}

func TestSubmitCachesScoreAndCompletes(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	t0 := mustTime(t, "2024-03-01T09:00:00Z")
	session, err := svc.StartOrResume(subject.ID, student.ID, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	questions := loadQuestions(t, db, subject.ID)
	answers := map[uuid.UUID]uuid.UUID{
		questions[0].ID: optionID(t, questions[0], true),
		questions[1].ID: optionID(t, questions[1], false),
	}

	submitAt := t0.Add(30 * time.Minute)
	completed, result, err := svc.Submit(session.ID, student.ID, answers, submitAt)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Total != 2 || result.Correct != 1 || result.Percentage != 50.0 {
		t.Fatalf("unexpected score: %+v", result)
	}
	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(submitAt) {
		t.Fatalf("completed_at not set to submission time")
	}
	if !completed.HasScores() {
		t.Fatalf("score fields must be cached on completion")
	}
	if *completed.ScorePercentage != 50.0 {
		t.Fatalf("cached percentage %v, want 50.0", *completed.ScorePercentage)
	}
}

func TestSubmitTwiceWithSameAnswersIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 2)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	questions := loadQuestions(t, db, subject.ID)
	answers := map[uuid.UUID]uuid.UUID{
		questions[0].ID: optionID(t, questions[0], true),
	}

	_, first, err := svc.Submit(session.ID, student.ID, answers, time.Now())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, second, err := svc.Submit(session.ID, student.ID, answers, time.Now())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first != second {
		t.Fatalf("re-submission with identical answers changed the score: %+v vs %+v", first, second)
	}

	var rows []models.Response
	if err := db.Where("session_id = ?", session.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load responses: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("re-submission must not duplicate response rows, got %d", len(rows))
	}
}

func TestSubmitOverwritesOnChangedAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 1)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q := loadQuestions(t, db, subject.ID)[0]

	_, first, err := svc.Submit(session.ID, student.ID, map[uuid.UUID]uuid.UUID{q.ID: optionID(t, q, false)}, time.Now())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.Correct != 0 {
		t.Fatalf("expected 0 correct, got %d", first.Correct)
	}

	_, second, err := svc.Submit(session.ID, student.ID, map[uuid.UUID]uuid.UUID{q.ID: optionID(t, q, true)}, time.Now())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.Correct != 1 || second.Percentage != 100.0 {
		t.Fatalf("re-submission must regrade from current responses, got %+v", second)
	}
}

func TestSubmitRejectsNonOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	other := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 1)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, _, err = svc.Submit(session.ID, other.ID, nil, time.Now())
	if !errors.Is(err, ErrNotSessionOwner) {
		t.Fatalf("got %v, want ErrNotSessionOwner", err)
	}
}

func TestSubmitZeroQuestionSubject(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 0)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, result, err := svc.Submit(session.ID, student.ID, nil, time.Now())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Total != 0 || result.Percentage != 0 {
		t.Fatalf("zero-question subject must score 0%%, got %+v", result)
	}
}

func TestRecordResponseOnCompletedSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewExamService(db)
	student := seedStudent(t, db)
	subject := seedSubject(t, db, 45, 1)

	session, err := svc.StartOrResume(subject.ID, student.ID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := svc.Submit(session.ID, student.ID, nil, time.Now()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	q := loadQuestions(t, db, subject.ID)[0]
	err = svc.RecordResponse(session.ID, q.ID, optionID(t, q, true))
	if !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("got %v, want ErrSessionCompleted", err)
	}
}
