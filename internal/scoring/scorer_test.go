package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/stretchr/testify/assert"
)

var foundAt = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func testItem() domain.Item {
	return domain.Item{
		ID:            uuid.New(),
		Title:         "Black wallet",
		Category:      "wallet",
		FoundLocation: "Library, 2nd Floor",
		FoundAt:       foundAt,
	}
}

func testQuestions(itemID uuid.UUID, expected ...string) []domain.VerificationQuestion {
	qs := make([]domain.VerificationQuestion, len(expected))
	for i, e := range expected {
		qs[i] = domain.VerificationQuestion{
			ID:             uuid.New(),
			ItemID:         itemID,
			Position:       i,
			Prompt:         "question",
			ExpectedAnswer: e,
		}
	}
	return qs
}

func answersFor(qs []domain.VerificationQuestion, texts ...string) []domain.Answer {
	out := make([]domain.Answer, 0, len(texts))
	for i, text := range texts {
		out = append(out, domain.Answer{QuestionID: qs[i].ID, Text: text})
	}
	return out
}

func timePtr(t time.Time) *time.Time { return &t }

func TestScore_LocationNormalizedMatch(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown")

	result := s.Score(item, qs, domain.Claim{
		LostLocation: "Library 2nd floor",
		Answers:      answersFor(qs, "brown"),
	})

	assert.True(t, result.LocationUsed)
	assert.GreaterOrEqual(t, result.LocationScore, 90.0)
	assert.Equal(t, 100.0, result.LocationScore)
}

func TestScore_LocationPartialOverlap(t *testing.T) {
	s := NewScorer(Config{TypoTolerance: 0})
	item := testItem()
	item.FoundLocation = "Main Library north entrance"
	qs := testQuestions(item.ID, "brown")

	result := s.Score(item, qs, domain.Claim{
		LostLocation: "Library cafeteria",
		Answers:      answersFor(qs, "brown"),
	})

	assert.InDelta(t, 100.0/3.0, result.LocationScore, 1e-9)
}

func TestScore_AnswerScoreIsMeanOverAllQuestions(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown", "three cards", "student id")

	result := s.Score(item, qs, domain.Claim{
		Answers: answersFor(qs, "brown", "three cards", "driving licence"),
	})

	assert.InDelta(t, 200.0/3.0, result.AnswerScore, 1e-9)
}

func TestScore_UnansweredQuestionsCountZero(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown", "three cards")

	result := s.Score(item, qs, domain.Claim{
		Answers: answersFor(qs, "brown"),
	})

	assert.InDelta(t, 50.0, result.AnswerScore, 1e-9)
}

func TestScore_AnswersForUnknownQuestionsIgnored(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown")

	result := s.Score(item, qs, domain.Claim{
		Answers: []domain.Answer{{QuestionID: uuid.New(), Text: "brown"}},
	})

	assert.Equal(t, 0.0, result.AnswerScore)
	assert.Equal(t, 0, result.CompositeScore)
}

func TestScore_WeightsRedistributedWithoutTime(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown", "three cards", "student id")

	result := s.Score(item, qs, domain.Claim{
		LostLocation: "Library 2nd floor",
		Answers:      answersFor(qs, "brown", "three cards", "nothing"),
	})

	// (0.6*66.67 + 0.25*100) / 0.85
	assert.False(t, result.TimeUsed)
	assert.Equal(t, 76, result.CompositeScore)
}

func TestScore_OnlyAnswersPresent(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown")

	result := s.Score(item, qs, domain.Claim{Answers: answersFor(qs, "Brown!")})

	assert.False(t, result.LocationUsed)
	assert.False(t, result.TimeUsed)
	assert.Equal(t, 100, result.CompositeScore)
}

func TestScore_AllDimensions(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown")

	result := s.Score(item, qs, domain.Claim{
		LostLocation: "library 2nd floor",
		LostTime:     timePtr(foundAt.Add(-2 * time.Hour)),
		Answers:      answersFor(qs, "brown"),
	})

	// 0.6*100 + 0.25*100 + 0.15*66.67
	assert.True(t, result.TimeUsed)
	assert.Equal(t, 95, result.CompositeScore)
}

func TestScore_TimeDecay(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown")

	tests := []struct {
		name     string
		lostTime time.Time
		want     float64
	}{
		{"same time", foundAt, 100},
		{"three hours before", foundAt.Add(-3 * time.Hour), 50},
		{"three hours after", foundAt.Add(3 * time.Hour), 50},
		{"at tolerance", foundAt.Add(-6 * time.Hour), 0},
		{"beyond tolerance", foundAt.Add(-48 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Score(item, qs, domain.Claim{LostTime: timePtr(tt.lostTime)})
			assert.True(t, result.TimeUsed)
			assert.InDelta(t, tt.want, result.TimeScore, 1e-9)
		})
	}
}

func TestScore_NoEvidence(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown", "three cards")

	result := s.Score(item, qs, domain.Claim{
		Answers: answersFor(qs, "", "  "),
	})

	assert.Equal(t, 0, result.CompositeScore)
}

func TestScore_CompositeAlwaysInRange(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown leather", "three cards", "student id")

	claims := []domain.Claim{
		{},
		{LostLocation: "somewhere else entirely"},
		{LostTime: timePtr(foundAt.Add(time.Minute)), Answers: answersFor(qs, "brown leather", "three cards", "student id")},
		{LostLocation: "Library", LostTime: timePtr(foundAt.Add(-100 * time.Hour)), Answers: answersFor(qs, "leather")},
	}
	for _, c := range claims {
		result := s.Score(item, qs, c)
		assert.GreaterOrEqual(t, result.CompositeScore, 0)
		assert.LessOrEqual(t, result.CompositeScore, 100)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(DefaultConfig())
	item := testItem()
	qs := testQuestions(item.ID, "brown leather", "three cards")
	claim := domain.Claim{
		LostLocation: "library",
		LostTime:     timePtr(foundAt.Add(-90 * time.Minute)),
		Answers:      answersFor(qs, "leathr brown", "two cards"),
	}

	assert.Equal(t, s.Score(item, qs, claim), s.Score(item, qs, claim))
}

func TestNewScorer_Defaults(t *testing.T) {
	s := NewScorer(Config{TimeTolerance: -time.Hour, TypoTolerance: -2})

	assert.Equal(t, DefaultWeights, s.cfg.Weights)
	assert.Equal(t, DefaultTimeTolerance, s.cfg.TimeTolerance)
	assert.Equal(t, 0, s.cfg.TypoTolerance)
}
