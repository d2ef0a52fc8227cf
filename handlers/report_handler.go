package handlers

import (
	"errors"
	"log"

	"github.com/olusegunak/school_cbt/database"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/olusegunak/school_cbt/models"
	"github.com/olusegunak/school_cbt/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionReport returns the per-question breakdown for one completed
// session. Students see only their own sessions; teachers see any.
func SessionReport(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	svc := services.NewReportService(database.DB)
	report, err := svc.SessionReport(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build session report"})
	}

	requesterID := middleware.ClaimUserID(c)
	role := middleware.ClaimRole(c)
	if report.Session.StudentID != requesterID && role != "teacher" && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized for this exam session"})
	}

	return c.JSON(report)
}

// reportCardRows runs an opportunistic backfill and then builds the
// student's rows over every subject.
func reportCardRows(studentID uuid.UUID) ([]services.ReportRow, error) {
	if _, err := services.NewBackfillService(database.DB).BackfillMissingScores(); err != nil {
		// best effort; the row builder recomputes missing scores anyway
		log.Printf("Auto-backfill before report failed: %v", err)
	}

	var subjects []models.Subject
	if err := database.DB.Order("created_at DESC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return services.NewReportService(database.DB).BuildReportRows(studentID, subjects)
}

func ReportCard(c *fiber.Ctx) error {
	studentID := middleware.ClaimUserID(c)

	rows, err := reportCardRows(studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report card"})
	}

	overall := services.Overall(rows)
	return c.JSON(fiber.Map{
		"rows":          rows,
		"overall":       overall,
		"overall_grade": services.NigeriaGrade(overall),
	})
}

// ReportCardPDF renders the report card to PDF and returns the bytes; a copy
// is archived to Cloudinary in the background when configured.
func ReportCardPDF(c *fiber.Ctx) error {
	studentID := middleware.ClaimUserID(c)

	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	rows, err := reportCardRows(studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report card"})
	}

	html, err := services.RenderReportCardHTML(student, rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report card"})
	}

	pdfBytes, err := services.GeneratePDFFromHTML(html)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report card"})
	}

	go services.ArchiveReportCard(studentID, pdfBytes)

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=report_card.pdf")
	return c.Send(pdfBytes)
}

// BackfillScores lets teachers trigger a score backfill on demand.
func BackfillScores(c *fiber.Ctx) error {
	updated, err := services.NewBackfillService(database.DB).BackfillMissingScores()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to backfill scores"})
	}
	return c.JSON(fiber.Map{
		"message":          "Scores backfilled successfully",
		"sessions_updated": updated,
	})
}

// Diagnostics gives teachers a quick count of stored entities.
func Diagnostics(c *fiber.Ctx) error {
	counts := fiber.Map{}
	for name, model := range map[string]interface{}{
		"users":     &models.User{},
		"subjects":  &models.Subject{},
		"questions": &models.Question{},
		"sessions":  &models.ExamSession{},
		"responses": &models.Response{},
	} {
		var n int64
		database.DB.Model(model).Count(&n)
		counts[name] = n
	}

	var completed int64
	database.DB.Model(&models.ExamSession{}).Where("completed_at IS NOT NULL").Count(&completed)
	counts["completed_sessions"] = completed

	var missingScores int64
	database.DB.Model(&models.ExamSession{}).
		Where("completed_at IS NOT NULL").
		Where("total_questions IS NULL OR correct_answers IS NULL OR score_percentage IS NULL").
		Count(&missingScores)
	counts["sessions_missing_scores"] = missingScores

	return c.JSON(counts)
}
