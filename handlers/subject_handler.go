package handlers

import (
	"github.com/olusegunak/school_cbt/database"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/olusegunak/school_cbt/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SubjectRequest struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	ClassName       *string `json:"class_name"`
}

func CreateSubject(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacherID := middleware.ClaimUserID(c)
	subject := models.Subject{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		ClassName:       req.ClassName,
		TeacherID:       &teacherID,
	}

	if err := database.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create subject"})
	}

	return c.Status(fiber.StatusCreated).JSON(subject)
}

func ListSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	database.DB.Order("created_at DESC").Find(&subjects)
	return c.JSON(subjects)
}

func GetSubject(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	var subject models.Subject
	if err := database.DB.Preload("Questions.Options").First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}
	return c.JSON(subject)
}

// UpdateSubject edits subject metadata. Only the owning teacher (or an
// admin) may edit; attached questions are managed through the question
// endpoints.
func UpdateSubject(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	teacherID := middleware.ClaimUserID(c)
	if middleware.ClaimRole(c) != "admin" && (subject.TeacherID == nil || *subject.TeacherID != teacherID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the owning teacher can edit this subject"})
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	subject.Name = req.Name
	subject.Description = req.Description
	subject.DurationMinutes = req.DurationMinutes
	subject.ClassName = req.ClassName
	database.DB.Save(&subject)

	return c.JSON(subject)
}

func DeleteSubject(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	result := database.DB.Delete(&models.Subject{}, "id = ?", subjectID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete subject"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Text             string          `json:"text" validate:"required"`
	TimeLimitSeconds *int            `json:"time_limit_seconds"`
	Options          []OptionRequest `json:"options" validate:"required,min=2,dive"`
}

func (r QuestionRequest) correctCount() int {
	n := 0
	for _, opt := range r.Options {
		if opt.IsCorrect {
			n++
		}
	}
	return n
}

func CreateQuestion(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.correctCount() > 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A question may have at most one correct option"})
	}

	question := models.Question{
		SubjectID:        subject.ID,
		Text:             req.Text,
		TimeLimitSeconds: req.TimeLimitSeconds,
	}
	for _, opt := range req.Options {
		question.Options = append(question.Options, models.Option{
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		})
	}

	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

func ListQuestions(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	var questions []models.Question
	database.DB.Preload("Options").Where("subject_id = ?", subjectID).Find(&questions)
	return c.JSON(questions)
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	database.DB.Delete(&models.Option{}, "question_id = ?", question.ID)
	database.DB.Delete(&question)
	return c.SendStatus(fiber.StatusNoContent)
}
