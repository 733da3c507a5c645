package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware())
	}
	s.echo.Use(ErrorHandlingMiddleware(s.httpMetrics))
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            63072000, // 2 years; only sent over HTTPS
		HSTSPreloadEnabled:    true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	s.echo.Use(middleware.BodyLimit("64K"))

	s.registerHealthRoutes()
	s.registerAPIRoutes()

	if s.metricsHandler != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}
	if s.websocketHandler != nil {
		s.echo.GET("/connection/websocket", echo.WrapHandler(s.websocketHandler), s.requireActor, websocketCredentials)
	}
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api", s.requireActor)
	limited := newRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst)

	api.POST("/items", s.handleReportItem, limited)
	api.GET("/items", s.handleListItems)
	api.GET("/items/mine", s.handleListMyItems)
	api.GET("/items/:id", s.handleGetItem)
	api.POST("/items/:id/claims", s.handleSubmitClaim, limited)
	api.GET("/items/:id/claims", s.handleListClaimsForItem)

	api.GET("/claims/mine", s.handleListMyClaims)
	api.POST("/claims/:id/approve", s.handleApproveClaim, limited)
	api.POST("/claims/:id/reject", s.handleRejectClaim, limited)
	api.POST("/claims/:id/rescore", s.handleRescoreClaim, limited)

	api.GET("/dashboard", s.handleDashboard)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
