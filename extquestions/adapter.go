package extquestions

import (
	"fmt"
	"sort"

	"github.com/olusegunak/school_cbt/models"
	"github.com/olusegunak/school_cbt/services"
	"github.com/google/uuid"
)

// Subjects the bank serves for SS2 and SS3 classes.
var Subjects = map[string]string{
	"chemistry":   "Chemistry",
	"physics":     "Physics",
	"mathematics": "Mathematics",
	"biology":     "Biology",
	"english":     "English Language",
	"economics":   "Economics",
	"geography":   "Geography",
	"government":  "Government",
	"history":     "History",
	"commerce":    "Commerce",
	"accounting":  "Accounting",
	"insurance":   "Insurance",
}

// ExternalExamDuration is the fixed window for bank-sourced exams.
const ExternalExamDurationMinutes = 45

var optionKeys = []string{"a", "b", "c", "d", "e"}

// TranslatedQuestion is one bank question resolved into the stored question
// shape: an in-memory Question/Option set with synthetic ids, never
// persisted. Grading and presentation treat it exactly like an authored
// question.
type TranslatedQuestion struct {
	ExternalID    string
	Question      models.Question
	OptionIDByKey map[string]uuid.UUID
}

// Translate resolves bank payloads into Question/Option values once, at the
// boundary. Empty option slots are dropped; an answer key that names a
// missing option leaves the question without a correct option, which the
// grading engine counts as always-incorrect.
func Translate(payload []APIQuestion) []TranslatedQuestion {
	translated := make([]TranslatedQuestion, 0, len(payload))
	for _, api := range payload {
		if api.Question == "" {
			continue
		}

		q := models.Question{
			ID:   uuid.New(),
			Text: api.Question,
		}
		optionIDByKey := make(map[string]uuid.UUID)

		for _, key := range optionKeys {
			text, ok := api.Option[key]
			if !ok || text == "" {
				continue
			}
			opt := models.Option{
				ID:         uuid.New(),
				QuestionID: q.ID,
				Text:       text,
				IsCorrect:  key == api.Answer,
			}
			q.Options = append(q.Options, opt)
			optionIDByKey[key] = opt.ID
		}

		translated = append(translated, TranslatedQuestion{
			ExternalID:    fmt.Sprintf("api_%s", api.ID.String()),
			Question:      q,
			OptionIDByKey: optionIDByKey,
		})
	}
	return translated
}

// QuestionView is the student-facing shape of a bank question: options by
// key, no answer.
type QuestionView struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Options  map[string]string `json:"options"`
	Year     string            `json:"year,omitempty"`
	ExamType string            `json:"examtype,omitempty"`
}

// StudentViews strips answers from a bank payload for presentation.
func StudentViews(payload []APIQuestion) []QuestionView {
	views := make([]QuestionView, 0, len(payload))
	for _, api := range payload {
		if api.Question == "" {
			continue
		}
		options := make(map[string]string)
		for _, key := range optionKeys {
			if text, ok := api.Option[key]; ok && text != "" {
				options[key] = text
			}
		}
		views = append(views, QuestionView{
			ID:       fmt.Sprintf("api_%s", api.ID.String()),
			Text:     api.Question,
			Options:  options,
			Year:     api.Year,
			ExamType: api.ExamType,
		})
	}
	return views
}

// QuestionResult is one graded bank question for the results view.
type QuestionResult struct {
	QuestionID   string            `json:"question_id"`
	Question     string            `json:"question"`
	SubmittedKey string            `json:"submitted_key"`
	CorrectKey   string            `json:"correct_key"`
	IsCorrect    bool              `json:"is_correct"`
	Options      map[string]string `json:"options"`
}

// GradeSubmission grades key-based answers against the payload the student
// was shown, through the same grading engine stored exams use. answers maps
// external question id ("api_<id>") to the selected option key.
func GradeSubmission(payload []APIQuestion, answers map[string]string) (services.ScoreResult, []QuestionResult) {
	translated := Translate(payload)

	questions := make([]models.Question, 0, len(translated))
	responses := make(map[uuid.UUID]uuid.UUID)
	for _, t := range translated {
		questions = append(questions, t.Question)
		key, ok := answers[t.ExternalID]
		if !ok {
			continue
		}
		if optionID, ok := t.OptionIDByKey[key]; ok {
			responses[t.Question.ID] = optionID
		}
	}

	result := services.Score(questions, responses)

	results := make([]QuestionResult, 0, len(translated))
	for _, t := range translated {
		correctKey := ""
		for _, key := range sortedKeys(t.OptionIDByKey) {
			if optID := t.OptionIDByKey[key]; isCorrectOption(t.Question, optID) {
				correctKey = key
				break
			}
		}
		submittedKey := answers[t.ExternalID]

		options := make(map[string]string)
		for key, optID := range t.OptionIDByKey {
			options[key] = optionText(t.Question, optID)
		}

		results = append(results, QuestionResult{
			QuestionID:   t.ExternalID,
			Question:     t.Question.Text,
			SubmittedKey: submittedKey,
			CorrectKey:   correctKey,
			IsCorrect:    correctKey != "" && submittedKey == correctKey,
			Options:      options,
		})
	}

	return result, results
}

func sortedKeys(m map[string]uuid.UUID) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isCorrectOption(q models.Question, optionID uuid.UUID) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt.IsCorrect
		}
	}
	return false
}

func optionText(q models.Question, optionID uuid.UUID) string {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt.Text
		}
	}
	return ""
}
