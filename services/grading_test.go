package services

import (
	"testing"

	"github.com/olusegunak/school_cbt/models"
	"github.com/google/uuid"
)

func makeQuestion(correctKey string) models.Question {
	q := models.Question{ID: uuid.New(), Text: "q"}
	for _, key := range []string{"A", "B"} {
		q.Options = append(q.Options, models.Option{
			ID:         uuid.New(),
			QuestionID: q.ID,
			Text:       "Option " + key,
			IsCorrect:  key == correctKey,
		})
	}
	return q
}

func selected(q models.Question, key string) uuid.UUID {
	for _, opt := range q.Options {
		if opt.Text == "Option "+key {
			return opt.ID
		}
	}
	return uuid.Nil
}

func TestScoreTwoQuestionsOneCorrect(t *testing.T) {
	q1 := makeQuestion("B")
	q2 := makeQuestion("B")

	responses := map[uuid.UUID]uuid.UUID{
		q1.ID: selected(q1, "B"),
		q2.ID: selected(q2, "A"),
	}

	result := Score([]models.Question{q1, q2}, responses)
	if result.Total != 2 || result.Correct != 1 {
		t.Fatalf("got total=%d correct=%d, want 2/1", result.Total, result.Correct)
	}
	if result.Percentage != 50.0 {
		t.Fatalf("got percentage=%v, want 50.0", result.Percentage)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	q1 := makeQuestion("B")
	q2 := makeQuestion("A")
	q3 := makeQuestion("B")
	questions := []models.Question{q1, q2, q3}
	responses := map[uuid.UUID]uuid.UUID{
		q1.ID: selected(q1, "B"),
		q3.ID: selected(q3, "A"),
	}

	first := Score(questions, responses)
	second := Score(questions, responses)
	if first != second {
		t.Fatalf("same inputs produced different results: %+v vs %+v", first, second)
	}
}

func TestScoreMissingResponseCountsIncorrect(t *testing.T) {
	q1 := makeQuestion("B")
	q2 := makeQuestion("B")

	responses := map[uuid.UUID]uuid.UUID{
		q1.ID: selected(q1, "B"),
	}

	result := Score([]models.Question{q1, q2}, responses)
	if result.Total != 2 {
		t.Fatalf("unanswered question dropped from total: got %d", result.Total)
	}
	if result.Correct != 1 {
		t.Fatalf("got correct=%d, want 1", result.Correct)
	}
}

func TestScoreZeroQuestions(t *testing.T) {
	result := Score(nil, nil)
	if result.Total != 0 || result.Correct != 0 || result.Percentage != 0 {
		t.Fatalf("zero-question subject should score 0/0/0, got %+v", result)
	}
}

func TestScoreQuestionWithoutCorrectOption(t *testing.T) {
	q := models.Question{ID: uuid.New(), Text: "broken"}
	q.Options = []models.Option{
		{ID: uuid.New(), QuestionID: q.ID, Text: "Option A"},
		{ID: uuid.New(), QuestionID: q.ID, Text: "Option B"},
	}

	responses := map[uuid.UUID]uuid.UUID{q.ID: q.Options[0].ID}

	result := Score([]models.Question{q}, responses)
	if result.Total != 1 || result.Correct != 0 {
		t.Fatalf("question without a correct option must count as incorrect, got %+v", result)
	}
}
