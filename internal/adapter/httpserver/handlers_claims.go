package httpserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/campusfind/internal/app"
	apperrors "github.com/pscheid92/campusfind/internal/platform/errors"
)

func (s *Server) handleSubmitClaim(c echo.Context) error {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req submitClaimRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithCause(err)
	}

	claim, err := s.app.SubmitClaim(c.Request().Context(), req.toDomain(itemID, actorFrom(c)))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, toClaimResponse(*claim))
}

func (s *Server) handleListClaimsForItem(c echo.Context) error {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	claims, err := s.app.ListClaimsForItem(c.Request().Context(), itemID, actorFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toClaimResponses(claims))
}

func (s *Server) handleListMyClaims(c echo.Context) error {
	views, err := s.app.ListMyClaims(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toMyClaimResponses(views))
}

func (s *Server) handleApproveClaim(c echo.Context) error {
	return s.decide(c, s.app.ApproveClaim)
}

func (s *Server) handleRejectClaim(c echo.Context) error {
	return s.decide(c, s.app.RejectClaim)
}

type decideFunc func(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error)

func (s *Server) decide(c echo.Context, fn decideFunc) error {
	claimID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	d, err := fn(c.Request().Context(), claimID, actorFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toDecisionResponse(d))
}

func (s *Server) handleRescoreClaim(c echo.Context) error {
	claimID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	claim, match, err := s.app.RescoreClaim(c.Request().Context(), claimID, actorFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, rescoreResponse{
		Claim: toClaimResponse(*claim),
		Match: matchResponse{
			AnswerScore:   match.AnswerScore,
			LocationScore: match.LocationScore,
			TimeScore:     match.TimeScore,
			LocationUsed:  match.LocationUsed,
			TimeUsed:      match.TimeUsed,
		},
	})
}
