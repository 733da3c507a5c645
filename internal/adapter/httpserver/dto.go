package httpserver

import (
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/app"
	"github.com/pscheid92/campusfind/internal/domain"
)

// Request bodies.

type questionInput struct {
	Prompt         string `json:"prompt"`
	ExpectedAnswer string `json:"expected_answer"`
}

type reportItemRequest struct {
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	FoundLocation string          `json:"found_location"`
	FoundAt       time.Time       `json:"found_at"`
	PhotoRef      string          `json:"photo_ref"`
	Questions     []questionInput `json:"questions"`
}

func (r reportItemRequest) toDomain(finderID string) domain.ReportItemRequest {
	questions := make([]domain.QuestionInput, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = domain.QuestionInput{Prompt: q.Prompt, ExpectedAnswer: q.ExpectedAnswer}
	}
	return domain.ReportItemRequest{
		FinderID:      finderID,
		Title:         r.Title,
		Category:      r.Category,
		Description:   r.Description,
		FoundLocation: r.FoundLocation,
		FoundAt:       r.FoundAt,
		PhotoRef:      r.PhotoRef,
		Questions:     questions,
	}
}

type answerInput struct {
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
}

type submitClaimRequest struct {
	LostLocation   string        `json:"lost_location"`
	LostTime       *time.Time    `json:"lost_time"`
	Answers        []answerInput `json:"answers"`
	AdditionalInfo string        `json:"additional_info"`
}

func (r submitClaimRequest) toDomain(itemID uuid.UUID, claimantID string) domain.SubmitClaimRequest {
	answers := make([]domain.Answer, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = domain.Answer{QuestionID: a.QuestionID, Text: a.Text}
	}
	return domain.SubmitClaimRequest{
		ItemID:         itemID,
		ClaimantID:     claimantID,
		LostLocation:   r.LostLocation,
		LostTime:       r.LostTime,
		Answers:        answers,
		AdditionalInfo: r.AdditionalInfo,
	}
}

// Responses. Expected answers have no representation here.

type itemResponse struct {
	ID            uuid.UUID         `json:"id"`
	FinderID      string            `json:"finder_id"`
	Title         string            `json:"title"`
	Category      string            `json:"category"`
	Description   string            `json:"description,omitempty"`
	FoundLocation string            `json:"found_location"`
	FoundAt       time.Time         `json:"found_at"`
	PhotoRef      string            `json:"photo_ref,omitempty"`
	Status        domain.ItemStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:            item.ID,
		FinderID:      item.FinderID,
		Title:         item.Title,
		Category:      item.Category,
		Description:   item.Description,
		FoundLocation: item.FoundLocation,
		FoundAt:       item.FoundAt,
		PhotoRef:      item.PhotoRef,
		Status:        item.Status,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func toItemResponses(items []domain.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, item := range items {
		out[i] = toItemResponse(item)
	}
	return out
}

type publicQuestion struct {
	ID     uuid.UUID `json:"id"`
	Prompt string    `json:"prompt"`
}

type itemDetailResponse struct {
	itemResponse
	Questions []publicQuestion `json:"questions"`
}

func toItemDetailResponse(d *app.ItemDetail) itemDetailResponse {
	questions := make([]publicQuestion, len(d.Questions))
	for i, q := range d.Questions {
		questions[i] = publicQuestion{ID: q.ID, Prompt: q.Prompt}
	}
	return itemDetailResponse{itemResponse: toItemResponse(d.Item), Questions: questions}
}

type answerResponse struct {
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
}

type claimResponse struct {
	ID             uuid.UUID          `json:"id"`
	ItemID         uuid.UUID          `json:"item_id"`
	ClaimantID     string             `json:"claimant_id"`
	LostLocation   string             `json:"lost_location"`
	LostTime       *time.Time         `json:"lost_time,omitempty"`
	Answers        []answerResponse   `json:"answers"`
	AdditionalInfo string             `json:"additional_info,omitempty"`
	SubmittedAt    time.Time          `json:"submitted_at"`
	Status         domain.ClaimStatus `json:"status"`
	CompositeScore int                `json:"composite_score"`
	Confidence     domain.Confidence  `json:"confidence"`
	DecidedBy      string             `json:"decided_by,omitempty"`
	DecidedAt      *time.Time         `json:"decided_at,omitempty"`
}

func toClaimResponse(c domain.Claim) claimResponse {
	answers := make([]answerResponse, len(c.Answers))
	for i, a := range c.Answers {
		answers[i] = answerResponse{QuestionID: a.QuestionID, Text: a.Text}
	}
	return claimResponse{
		ID:             c.ID,
		ItemID:         c.ItemID,
		ClaimantID:     c.ClaimantID,
		LostLocation:   c.LostLocation,
		LostTime:       c.LostTime,
		Answers:        answers,
		AdditionalInfo: c.AdditionalInfo,
		SubmittedAt:    c.SubmittedAt,
		Status:         c.Status,
		CompositeScore: c.CompositeScore,
		Confidence:     domain.ConfidenceFor(c.CompositeScore),
		DecidedBy:      c.DecidedBy,
		DecidedAt:      c.DecidedAt,
	}
}

func toClaimResponses(claims []domain.Claim) []claimResponse {
	out := make([]claimResponse, len(claims))
	for i, c := range claims {
		out[i] = toClaimResponse(c)
	}
	return out
}

type myClaimResponse struct {
	claimResponse
	ItemTitle  string            `json:"item_title"`
	ItemStatus domain.ItemStatus `json:"item_status"`
}

func toMyClaimResponses(views []domain.ClaimView) []myClaimResponse {
	out := make([]myClaimResponse, len(views))
	for i, v := range views {
		out[i] = myClaimResponse{
			claimResponse: toClaimResponse(v.Claim),
			ItemTitle:     v.ItemTitle,
			ItemStatus:    v.ItemStatus,
		}
	}
	return out
}

type decisionResponse struct {
	Claim      claimResponse   `json:"claim"`
	Item       itemResponse    `json:"item"`
	Superseded []claimResponse `json:"superseded"`
}

func toDecisionResponse(d *app.Decision) decisionResponse {
	return decisionResponse{
		Claim:      toClaimResponse(d.Claim),
		Item:       toItemResponse(d.Item),
		Superseded: toClaimResponses(d.Superseded),
	}
}

type matchResponse struct {
	AnswerScore   float64 `json:"answer_score"`
	LocationScore float64 `json:"location_score"`
	TimeScore     float64 `json:"time_score"`
	LocationUsed  bool    `json:"location_used"`
	TimeUsed      bool    `json:"time_used"`
}

type rescoreResponse struct {
	Claim claimResponse `json:"claim"`
	Match matchResponse `json:"match"`
}

type dashboardResponse struct {
	ItemsFound      int `json:"items_found"`
	ItemsReturned   int `json:"items_returned"`
	PendingReviews  int `json:"pending_reviews"`
	ClaimsSubmitted int `json:"claims_submitted"`
}
