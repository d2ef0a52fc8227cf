package handlers

import (
	"errors"
	"time"

	"github.com/olusegunak/school_cbt/database"
	"github.com/olusegunak/school_cbt/extquestions"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/olusegunak/school_cbt/models"
	"github.com/olusegunak/school_cbt/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// externalClasses are the classes that additionally sit exams sourced from
// the external question bank.
var externalClasses = map[string]bool{"SS 2": true, "SS 3": true}

type OptionForStudent struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type QuestionForStudent struct {
	ID               uuid.UUID          `json:"id"`
	Text             string             `json:"text"`
	TimeLimitSeconds *int               `json:"time_limit_seconds,omitempty"`
	Options          []OptionForStudent `json:"options"`
}

func questionsForStudent(questions []models.Question) []QuestionForStudent {
	out := make([]QuestionForStudent, len(questions))
	for i, q := range questions {
		opts := make([]OptionForStudent, len(q.Options))
		for j, o := range q.Options {
			opts[j] = OptionForStudent{ID: o.ID, Text: o.Text}
		}
		out[i] = QuestionForStudent{
			ID:               q.ID,
			Text:             q.Text,
			TimeLimitSeconds: q.TimeLimitSeconds,
			Options:          opts,
		}
	}
	return out
}

// StudentListSubjects returns the subjects the student may sit: those scoped
// to their class or to no class, plus the external-bank virtual subjects for
// SS2/SS3 students.
func StudentListSubjects(c *fiber.Ctx) error {
	className := middleware.ClaimClassName(c)

	query := database.DB.Order("created_at DESC")
	if className != "" {
		query = query.Where("class_name IS NULL OR class_name = ?", className)
	}

	var subjects []models.Subject
	query.Find(&subjects)

	response := fiber.Map{"subjects": subjects}
	if externalClasses[className] {
		response["external_subjects"] = extquestions.Subjects
	}
	return c.JSON(response)
}

// StartExam starts or resumes the student's open session for a subject and
// returns the question set with the server-computed remaining time.
func StartExam(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}
	studentID := middleware.ClaimUserID(c)

	svc := services.NewExamService(database.DB)
	session, err := svc.StartOrResume(subjectID, studentID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrSubjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start exam session"})
	}

	return examSessionView(c, svc, session)
}

// GetExamSession reloads an open session, for resuming after navigation.
func GetExamSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	studentID := middleware.ClaimUserID(c)

	svc := services.NewExamService(database.DB)
	session, err := svc.GetSessionForStudent(sessionID, studentID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return examSessionView(c, svc, session)
}

func examSessionView(c *fiber.Ctx, svc *services.ExamService, session *models.ExamSession) error {
	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", session.SubjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	remaining, err := svc.RemainingSeconds(session, &subject, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute remaining time"})
	}

	var questions []models.Question
	database.DB.Preload("Options").Where("subject_id = ?", subject.ID).Find(&questions)

	return c.JSON(fiber.Map{
		"session_id":        session.ID,
		"subject":           fiber.Map{"id": subject.ID, "name": subject.Name, "duration_minutes": subject.DurationMinutes},
		"started_at":        session.StartedAt,
		"completed_at":      session.CompletedAt,
		"remaining_seconds": remaining,
		"questions":         questionsForStudent(questions),
	})
}

type AnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,uuid"`
	OptionID   string `json:"option_id" validate:"required,uuid"`
}

// RecordAnswer saves a single option choice while the exam is running, so
// answers survive a dropped connection before final submission.
func RecordAnswer(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	studentID := middleware.ClaimUserID(c)

	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	svc := services.NewExamService(database.DB)
	if _, err := svc.GetSessionForStudent(sessionID, studentID); err != nil {
		return mapSessionError(c, err)
	}

	questionID, _ := uuid.Parse(req.QuestionID)
	optionID, _ := uuid.Parse(req.OptionID)
	if err := svc.RecordResponse(sessionID, questionID, optionID); err != nil {
		switch {
		case errors.Is(err, services.ErrSessionCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Exam has already been submitted"})
		case errors.Is(err, services.ErrOptionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Option not found for this question"})
		default:
			return mapSessionError(c, err)
		}
	}

	return c.JSON(fiber.Map{"message": "Answer recorded"})
}

type SubmitExamRequest struct {
	// Answers maps question id to the selected option id. Unanswered
	// questions are simply absent.
	Answers map[string]string `json:"answers"`
}

// SubmitExam grades and completes the session. A submission arriving after
// the advisory timer has run out is still accepted and scored.
func SubmitExam(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	studentID := middleware.ClaimUserID(c)

	var req SubmitExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	answers := make(map[uuid.UUID]uuid.UUID, len(req.Answers))
	for qid, oid := range req.Answers {
		questionID, err := uuid.Parse(qid)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question id in answers"})
		}
		optionID, err := uuid.Parse(oid)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid option id in answers"})
		}
		answers[questionID] = optionID
	}

	svc := services.NewExamService(database.DB)
	session, result, err := svc.Submit(sessionID, studentID, answers, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrOptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Option not found for this question"})
		}
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":          "Exam submitted successfully",
		"session_id":       session.ID,
		"total_questions":  result.Total,
		"correct_answers":  result.Correct,
		"score_percentage": result.Percentage,
		"grade":            services.NigeriaGrade(result.Percentage),
	})
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam session not found"})
	case errors.Is(err, services.ErrNotSessionOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized for this exam session"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected error"})
	}
}
