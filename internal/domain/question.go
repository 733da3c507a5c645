package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	MinQuestionsPerItem = 1
	MaxQuestionsPerItem = 5
)

// VerificationQuestion is an owner-knowledge check defined by the finder.
// ExpectedAnswer is finder-private and must never leave the service.
type VerificationQuestion struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	Position       int
	Prompt         string
	ExpectedAnswer string
}

// PublicQuestion is the claimant-facing view of a question.
type PublicQuestion struct {
	ID     uuid.UUID
	Prompt string
}

func (q VerificationQuestion) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Prompt: q.Prompt}
}

// QuestionInput is a question as supplied when reporting an item.
type QuestionInput struct {
	Prompt         string
	ExpectedAnswer string
}

// ValidateQuestions enforces the 1..5 count and non-empty prompt/answer rules.
func ValidateQuestions(questions []QuestionInput) error {
	if len(questions) < MinQuestionsPerItem || len(questions) > MaxQuestionsPerItem {
		return NewValidationError("questions", "between 1 and 5 verification questions are required")
	}
	for _, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return NewValidationError("questions.prompt", "prompt must not be empty")
		}
		if strings.TrimSpace(q.ExpectedAnswer) == "" {
			return NewValidationError("questions.expected_answer", "expected answer must not be empty")
		}
	}
	return nil
}

// PublicQuestions strips expected answers from a question set.
func PublicQuestions(questions []VerificationQuestion) []PublicQuestion {
	out := make([]PublicQuestion, len(questions))
	for i, q := range questions {
		out[i] = q.Public()
	}
	return out
}
