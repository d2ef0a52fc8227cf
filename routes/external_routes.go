package routes

import (
	"github.com/olusegunak/school_cbt/handlers"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExternalRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	external := api.Group("/external", middleware.Protected())
	external.Get("/subjects", handlers.ListExternalSubjects)
	external.Post("/subjects/:subjectKey/start", handlers.StartExternalExam)
	external.Post("/submit", handlers.SubmitExternalExam)
}
