package routes

import (
	"github.com/olusegunak/school_cbt/handlers"
	"github.com/olusegunak/school_cbt/middleware"
	"github.com/gofiber/fiber/v2"
)

func SubjectRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	subjects := api.Group("/teacher/subjects", middleware.Protected(), middleware.TeacherRequired())
	subjects.Post("", handlers.CreateSubject)
	subjects.Get("", handlers.ListSubjects)
	subjects.Get("/:subjectId", handlers.GetSubject)
	subjects.Put("/:subjectId", handlers.UpdateSubject)
	subjects.Delete("/:subjectId", handlers.DeleteSubject)

	subjects.Post("/:subjectId/questions", handlers.CreateQuestion)
	subjects.Get("/:subjectId/questions", handlers.ListQuestions)

	questions := api.Group("/teacher/questions", middleware.Protected(), middleware.TeacherRequired())
	questions.Delete("/:questionId", handlers.DeleteQuestion)
}
