package services

import (
	"testing"
	"time"

	"github.com/olusegunak/school_cbt/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Question{},
		&models.Option{},
		&models.ExamSession{},
		&models.Response{},
		&models.ReportArtifact{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	student := models.User{
		FullName: "Test Student",
		Email:    uuid.New().String() + "@example.com",
		Password: "x",
		Role:     "student",
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return student
}

// seedSubject creates a subject with numQuestions questions of two options
// each; option B is the correct one throughout.
func seedSubject(t *testing.T, db *gorm.DB, durationMinutes, numQuestions int) models.Subject {
	t.Helper()
	subject := models.Subject{
		Name:            "Chemistry",
		DurationMinutes: durationMinutes,
	}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}

	for i := 0; i < numQuestions; i++ {
		q := models.Question{
			SubjectID: subject.ID,
			Text:      "Question " + string(rune('A'+i)),
			Options: []models.Option{
				{Text: "Option A", IsCorrect: false},
				{Text: "Option B", IsCorrect: true},
			},
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	return subject
}

func loadQuestions(t *testing.T, db *gorm.DB, subjectID uuid.UUID) []models.Question {
	t.Helper()
	var questions []models.Question
	if err := db.Preload("Options").Where("subject_id = ?", subjectID).Find(&questions).Error; err != nil {
		t.Fatalf("load questions: %v", err)
	}
	return questions
}

// optionID picks the option of a question by its correctness flag.
func optionID(t *testing.T, q models.Question, correct bool) uuid.UUID {
	t.Helper()
	for _, opt := range q.Options {
		if opt.IsCorrect == correct {
			return opt.ID
		}
	}
	t.Fatalf("question %s has no option with is_correct=%v", q.ID, correct)
	return uuid.Nil
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}
