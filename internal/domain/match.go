package domain

// MatchResult is the scoring engine's breakdown for one claim. Only
// CompositeScore is persisted. Component scores are in [0,100].
type MatchResult struct {
	AnswerScore    float64
	LocationScore  float64
	TimeScore      float64
	CompositeScore int

	// Whether the optional evidence dimensions took part in the composite.
	LocationUsed bool
	TimeUsed     bool
}

// Scorer computes a MatchResult. Implementations must be pure.
type Scorer interface {
	Score(item Item, questions []VerificationQuestion, claim Claim) MatchResult
}
