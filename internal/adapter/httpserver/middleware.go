package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/centrifugal/centrifuge"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/pscheid92/campusfind/internal/platform/correlation"
	apperrors "github.com/pscheid92/campusfind/internal/platform/errors"
)

const (
	actorKey       = "actorID"
	maxActorLength = 128
)

// correlationMiddleware adopts a well-formed incoming correlation id or
// generates one, and echoes it in the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

// requireActor reads the caller's identity from the trusted actor header set
// by the upstream identity service.
func (s *Server) requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actorID, err := parseActor(c.Request().Header.Get(s.config.ActorHeader))
		if err != nil {
			return err
		}
		c.Set(actorKey, actorID)
		return next(c)
	}
}

// websocketCredentials hands the actor to the centrifuge websocket handler,
// which only accepts connections that carry credentials.
func websocketCredentials(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds := &centrifuge.Credentials{UserID: actorFrom(c)}
		ctx := centrifuge.SetCredentials(c.Request().Context(), creds)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func parseActor(header string) (string, error) {
	actorID := strings.TrimSpace(header)
	if actorID == "" {
		return "", apperrors.UnauthorizedError("missing actor identity")
	}
	if len(actorID) > maxActorLength {
		return "", apperrors.ValidationError("actor identity too long")
	}
	return actorID, nil
}

func actorFrom(c echo.Context) string {
	actorID, _ := c.Get(actorKey).(string)
	return actorID
}

func ErrorHandlingMiddleware(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			appErr := toAppError(err)
			m.ObserveError(c.Path(), string(appErr.Type))
			return HandleError(c, appErr)
		}
	}
}

// HandleError writes err as a structured JSON error response.
func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := toAppError(err)
	logError(c, structuredErr)
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

// toAppError maps domain and transport errors onto structured errors.
// Anything unrecognised becomes an internal error whose cause is only logged.
func toAppError(err error) *apperrors.Error {
	if structured, ok := errors.AsType[*apperrors.Error](err); ok {
		return structured
	}
	if httpErr, ok := errors.AsType[*echo.HTTPError](err); ok {
		return WrapHTTPError(httpErr)
	}
	if ve, ok := errors.AsType[*domain.ValidationError](err); ok {
		appErr := apperrors.ValidationError(ve.Message)
		if ve.Field != "" {
			appErr = appErr.WithField("field", ve.Field)
		}
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return apperrors.ForbiddenError(err.Error())
	case errors.Is(err, domain.ErrConflict):
		return apperrors.ConflictError(err.Error())
	case errors.Is(err, domain.ErrThrottled):
		return apperrors.ThrottledError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.ExternalError("request timed out", err)
	}
	return apperrors.AsStructuredError(err)
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if actorID := actorFrom(c); actorID != "" {
		attrs = append(attrs, "actor_id", actorID)
	}

	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound, apperrors.TypeUnauthorized:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeForbidden, apperrors.TypeConflict, apperrors.TypeThrottled:
		slog.WarnContext(ctx, "Request refused", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var errType apperrors.ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		errType = apperrors.TypeValidation
	case http.StatusUnauthorized:
		errType = apperrors.TypeUnauthorized
	case http.StatusForbidden:
		errType = apperrors.TypeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		errType = apperrors.TypeNotFound
	case http.StatusConflict:
		errType = apperrors.TypeConflict
	case http.StatusTooManyRequests:
		errType = apperrors.TypeThrottled
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = apperrors.TypeExternal
	default:
		errType = apperrors.TypeInternal
		message = "internal server error"
	}

	err := &apperrors.Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}
	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}
	return err
}
