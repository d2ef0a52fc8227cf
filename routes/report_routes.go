package routes

import (
	"github.com/olusegunak/school_cbt/handlers"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReportRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	reports := api.Group("/reports", middleware.Protected())
	reports.Get("/sessions/:sessionId", handlers.SessionReport)
	reports.Get("/report-card", handlers.ReportCard)
	reports.Get("/report-card.pdf", handlers.ReportCardPDF)

	maintenance := api.Group("/maintenance", middleware.Protected(), middleware.TeacherRequired())
	maintenance.Post("/backfill-scores", handlers.BackfillScores)
	maintenance.Get("/diagnostics", handlers.Diagnostics)
}
