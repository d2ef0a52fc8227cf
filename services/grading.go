package services

import (
	"log"

	"github.com/olusegunak/school_cbt/models"
	"github.com/google/uuid"
)

// ScoreResult is the aggregate outcome of grading one question set against
// one set of responses.
type ScoreResult struct {
	Total      int     `json:"total_questions"`
	Correct    int     `json:"correct_answers"`
	Percentage float64 `json:"score_percentage"`
}

// Score grades the full question set against the submitted responses.
// responses maps question id to the selected option id; a question with no
// entry counts as incorrect, never as an error. Each question's Options must
// be loaded. The function is pure: same inputs always produce the same
// result, which the backfill job relies on.
func Score(questions []models.Question, responses map[uuid.UUID]uuid.UUID) ScoreResult {
	total := len(questions)
	correct := 0

	for _, q := range questions {
		correctID, ok := correctOptionID(q)
		if !ok {
			// A question with no correct option is gradable only as
			// always-incorrect. Warn and move on.
			log.Printf("⚠️ Question %s has no correct option; counting as incorrect", q.ID)
			continue
		}
		selectedID, answered := responses[q.ID]
		if !answered {
			continue
		}
		if selectedID == correctID {
			correct++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}

	return ScoreResult{Total: total, Correct: correct, Percentage: percentage}
}

func correctOptionID(q models.Question) (uuid.UUID, bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID, true
		}
	}
	return uuid.Nil, false
}
