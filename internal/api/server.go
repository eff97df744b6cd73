// Package api serves the game over HTTP: the command panel operations, read
// views of the kitchen, the serve ledger and a websocket event stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cocan/internal/advisor"
	"cocan/internal/database"
	"cocan/internal/kitchen"
	"cocan/internal/logx"
	"cocan/internal/monitoring"
)

// Deps are the parts a Server is built from. Store, Metrics and Auth are
// optional.
type Deps struct {
	Loop     *kitchen.Loop
	Session  string
	Scenario string
	Hub      *Hub
	Monitor  *monitoring.Monitor
	Metrics  *monitoring.Metrics
	Store    *database.Store
	Advisor  *advisor.Advisor
	Auth     *Auth
	Log      *logx.Logger
}

// Server handles player requests against a running kitchen loop.
type Server struct {
	Deps
	router *gin.Engine
}

// NewServer creates a server and its routes.
func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = logx.Discard()
	}
	if d.Hub == nil {
		d.Hub = NewHub(d.Log)
	}
	if d.Monitor == nil {
		d.Monitor = monitoring.NewMonitor()
	}
	if d.Advisor == nil {
		d.Advisor = advisor.New(nil, d.Log, 0)
	}
	s := &Server{Deps: d, router: gin.New()}
	s.router.Use(gin.Recovery(), s.requestLog())
	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "session": s.Session})
	})
	s.router.GET("/ws", s.handleWebSocket)
	if s.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.POST("/session", s.handleSession)
		api.GET("/state", s.handleState)
		api.GET("/scoreboard", s.handleScoreboard)
		api.GET("/scenarios", s.handleListScenarios)
		api.GET("/menu", s.handleMenu)
		api.GET("/metrics", s.handleMetrics)
		api.GET("/serves", s.handleServes)
		api.GET("/sessions", s.handleSessions)
	}

	chobins := api.Group("/chobins/:id")
	if s.Auth != nil {
		chobins.Use(s.Auth.Middleware())
	}
	{
		chobins.GET("", s.handlePanel)
		chobins.POST("/command", s.handleShowCommand)
		chobins.POST("/submit", s.handleSubmit)
		chobins.POST("/abort", s.handleAbort)
		chobins.POST("/steps/:step/material/:dir", s.handleCycleMaterial)
		chobins.POST("/steps/:step/action/:dir", s.handleCycleAction)
		chobins.PUT("/steps/:step", s.handleSetStep)
		chobins.GET("/suggestion", s.handleSuggestion)
	}
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Log.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *logx.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down %s: %w", addr, err)
	}
	log.Infof("server on %s stopped", addr)
	return nil
}

// statusFor maps kitchen errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, kitchen.ErrUnknownChobin):
		return http.StatusNotFound
	case errors.Is(err, kitchen.ErrStepOutOfRange),
		errors.Is(err, kitchen.ErrMaterialOutOfRange),
		errors.Is(err, kitchen.ErrActionOutOfRange),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, kitchen.ErrNotIdle),
		errors.Is(err, kitchen.ErrNothingToAbort),
		errors.Is(err, kitchen.ErrNotStarted):
		return http.StatusConflict
	case errors.Is(err, kitchen.ErrLoopStopped), errors.Is(err, errNoStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
