package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimSubmitted  ClaimStatus = "submitted"
	ClaimApproved   ClaimStatus = "approved"
	ClaimRejected   ClaimStatus = "rejected"
	ClaimSuperseded ClaimStatus = "superseded"
)

// Terminal reports whether the status can never change again.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimApproved || s == ClaimRejected || s == ClaimSuperseded
}

// Answer is a claimant's response to one verification question.
type Answer struct {
	QuestionID uuid.UUID
	Text       string
}

type Claim struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	ClaimantID     string
	LostLocation   string
	LostTime       *time.Time
	Answers        []Answer
	AdditionalInfo string
	SubmittedAt    time.Time
	Status         ClaimStatus
	CompositeScore int

	// Set once the claim reaches a terminal status.
	DecidedBy string
	DecidedAt *time.Time
}

// SubmitClaimRequest bundles the claimant-supplied fields for a claim.
type SubmitClaimRequest struct {
	ItemID         uuid.UUID
	ClaimantID     string
	LostLocation   string
	LostTime       *time.Time
	Answers        []Answer
	AdditionalInfo string
}

// CollapseAnswers removes duplicate question ids, keeping the position of the
// first occurrence and the text of the last one.
func CollapseAnswers(answers []Answer) []Answer {
	index := make(map[uuid.UUID]int, len(answers))
	out := make([]Answer, 0, len(answers))
	for _, a := range answers {
		if i, ok := index[a.QuestionID]; ok {
			out[i].Text = a.Text
			continue
		}
		index[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out
}

// HasNonEmptyAnswer reports whether at least one answer carries text.
func HasNonEmptyAnswer(answers []Answer) bool {
	for _, a := range answers {
		if strings.TrimSpace(a.Text) != "" {
			return true
		}
	}
	return false
}

// ClaimView is a claim joined with the item fields a claimant may see.
type ClaimView struct {
	Claim
	ItemTitle  string
	ItemStatus ItemStatus
}

// Confidence bands used when presenting a composite score to the finder.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func ConfidenceFor(score int) Confidence {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
