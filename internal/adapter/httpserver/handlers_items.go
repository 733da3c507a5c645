package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/campusfind/internal/domain"
	apperrors "github.com/pscheid92/campusfind/internal/platform/errors"
)

func (s *Server) handleReportItem(c echo.Context) error {
	var req reportItemRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithCause(err)
	}

	item, err := s.app.ReportItem(c.Request().Context(), req.toDomain(actorFrom(c)))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, toItemResponse(*item))
}

func (s *Server) handleListItems(c echo.Context) error {
	filter, err := parseItemFilter(c)
	if err != nil {
		return err
	}

	items, err := s.app.ListItems(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toItemResponses(items))
}

func (s *Server) handleListMyItems(c echo.Context) error {
	items, err := s.app.ListMyItems(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toItemResponses(items))
}

func (s *Server) handleGetItem(c echo.Context) error {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	detail, err := s.app.GetItem(c.Request().Context(), itemID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toItemDetailResponse(detail))
}

func (s *Server) handleDashboard(c echo.Context) error {
	d, err := s.app.Dashboard(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dashboardResponse{
		ItemsFound:      d.ItemsFound,
		ItemsReturned:   d.ItemsReturned,
		PendingReviews:  d.PendingReviews,
		ClaimsSubmitted: d.ClaimsSubmitted,
	})
}

func parseItemFilter(c echo.Context) (domain.ItemFilter, error) {
	filter := domain.ItemFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Text:     strings.TrimSpace(c.QueryParam("q")),
	}
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		status, ok := domain.ParseItemStatus(raw)
		if !ok {
			return domain.ItemFilter{}, apperrors.ValidationError("unknown item status").WithField("status", raw)
		}
		filter.Status = status
	}
	return filter, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid UUID format").WithField(name, raw)
	}
	return id, nil
}

func respond(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
