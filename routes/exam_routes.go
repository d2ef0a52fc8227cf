package routes

import (
	"github.com/olusegunak/school_cbt/handlers"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	exams := api.Group("/exams", middleware.Protected())
	exams.Get("/subjects", handlers.StudentListSubjects)
	exams.Post("/subjects/:subjectId/start", handlers.StartExam)
	exams.Get("/sessions/:sessionId", handlers.GetExamSession)
	exams.Put("/sessions/:sessionId/answers", handlers.RecordAnswer)
	exams.Post("/sessions/:sessionId/submit", handlers.SubmitExam)

	monitor := api.Group("/monitor", middleware.Protected(), middleware.TeacherRequired())
	monitor.Get("/exams", handlers.MonitorUpgradeRequired(), handlers.ExamMonitor())
}
