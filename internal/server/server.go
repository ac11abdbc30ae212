package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ServerConfig holds the HTTP-facing settings for the quote API
type ServerConfig struct {
	Addr    string // Bind address, API_ADDR (default ":8090")
	DevMode bool   // Include error details in responses
	APIKey  string // When set, every request must carry it in X-API-Key
}

// ServerDeps contains what NewServer needs to assemble the API
type ServerDeps struct {
	Handlers *Handlers
	Config   ServerConfig
}

// Server owns the echo instance and its shutdown lifecycle
type Server struct {
	e    *echo.Echo
	cfg  ServerConfig
	done chan struct{} // closed once Shutdown has finished
}

// NewServer builds the echo server, registers routes, and sets timeouts.
// The write timeout must stay above the AI ask budget (45s), which is the
// slowest handler in the service.
func NewServer(deps ServerDeps) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 75 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	RegisterRoutes(e, deps.Handlers, deps.Config)

	return &Server{e: e, cfg: deps.Config, done: make(chan struct{})}, nil
}

// Start serves requests on the configured address until Shutdown
func (s *Server) Start() error {
	return s.e.Start(s.cfg.Addr)
}

// Shutdown drains in-flight requests, giving them at most ten seconds
func (s *Server) Shutdown(ctx context.Context) error {
	defer close(s.done)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.e.Shutdown(ctx)
}

// WaitClosed blocks until Shutdown completes or the context expires
func (s *Server) WaitClosed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	}
}

// SetNoCacheHeaders marks every response uncacheable. Quotes go stale in
// seconds; a cached quote is worse than no quote.
func SetNoCacheHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return next(c)
	}
}

// SetJSONContentType forces the JSON content type on every response
func SetJSONContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return next(c)
	}
}

// NotFoundJSON is the echo error handler; it keeps every error the router
// itself raises (404, 405, auth failures) in the same JSON envelope the
// handlers use.
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}
