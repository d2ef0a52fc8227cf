package handlers

import (
	"time"

	"github.com/olusegunak/school_cbt/extquestions"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/olusegunak/school_cbt/services"
	"github.com/gofiber/fiber/v2"
)

const externalQuestionCount = 20

// ListExternalSubjects returns the question-bank subject catalog.
func ListExternalSubjects(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"subjects":     extquestions.Subjects,
		"class_levels": []string{"SS 2", "SS 3"},
	})
}

func requireExternalClass(c *fiber.Ctx) error {
	if !externalClasses[middleware.ClaimClassName(c)] {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "External exams are only available for SS2 and SS3 students"})
	}
	return nil
}

// StartExternalExam fetches a question set from the bank and hands it to the
// student together with the raw payload. The payload must be echoed back on
// submission so grading runs against the exact questions the student saw,
// not whatever a re-fetch would return.
func StartExternalExam(c *fiber.Ctx) error {
	if err := requireExternalClass(c); err != nil {
		return err
	}

	subjectKey := c.Params("subjectKey")
	subjectName, ok := extquestions.Subjects[subjectKey]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not available"})
	}

	client := extquestions.NewClient()
	payload, err := client.FetchQuestions(subjectKey, "utme", c.Query("year"), externalQuestionCount)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not load questions from the question bank"})
	}

	questions := extquestions.StudentViews(payload)
	if len(questions) == 0 {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "No questions available for this subject"})
	}

	return c.JSON(fiber.Map{
		"subject": fiber.Map{
			"key":              subjectKey,
			"name":             subjectName,
			"duration_minutes": extquestions.ExternalExamDurationMinutes,
		},
		"started_at":        time.Now().UTC(),
		"remaining_seconds": extquestions.ExternalExamDurationMinutes * 60,
		"questions":         questions,
		"payload":           payload,
	})
}

type SubmitExternalRequest struct {
	SubjectKey string                     `json:"subject_key" validate:"required"`
	Payload    []extquestions.APIQuestion `json:"payload" validate:"required,min=1"`
	// Answers maps external question id ("api_<id>") to the chosen option
	// key (a..e).
	Answers map[string]string `json:"answers"`
}

// SubmitExternalExam grades a bank-sourced exam against the echoed payload.
// Nothing is persisted; bank exams are practice runs.
func SubmitExternalExam(c *fiber.Ctx) error {
	if err := requireExternalClass(c); err != nil {
		return err
	}

	var req SubmitExternalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, ok := extquestions.Subjects[req.SubjectKey]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not available"})
	}

	result, details := extquestions.GradeSubmission(req.Payload, req.Answers)

	return c.JSON(fiber.Map{
		"message":          "External exam submitted successfully",
		"subject_key":      req.SubjectKey,
		"total_questions":  result.Total,
		"correct_answers":  result.Correct,
		"score_percentage": result.Percentage,
		"grade":            services.NigeriaGrade(result.Percentage),
		"results":          details,
	})
}
