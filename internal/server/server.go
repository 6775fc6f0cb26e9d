// Package server exposes the quoting flow over HTTP: catalog reads for
// the storefront, session state plus actions for the wizard, and a
// token-guarded back office for the sales team.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doorquote/internal/catalog"
	"doorquote/internal/config"
	"doorquote/internal/pricing"
	"doorquote/internal/storage"
	"doorquote/internal/submit"
	"doorquote/internal/wizard"
)

// SessionStore is the wizard state persistence the handlers need.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (wizard.State, error)
	Save(ctx context.Context, sessionID string, state wizard.State) error
	Clear(ctx context.Context, sessionID string) error
}

// Submitter finalizes a session into lead, quote and notifications.
type Submitter interface {
	Submit(ctx context.Context, state wizard.State) (submit.Result, error)
}

// RateLimiter throttles per-session write traffic.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, sessionID string, action string, limit int64, window time.Duration) (bool, error)
}

// AdminStore is the back-office view over persisted quotes.
type AdminStore interface {
	ListQuotes(ctx context.Context, limit int) ([]storage.Quote, error)
	GetQuoteByID(ctx context.Context, quoteID int64) (*storage.Quote, error)
	UpdateQuoteStatus(ctx context.Context, quoteID int64, status string) error
	GetQuoteStatistics(ctx context.Context) (*storage.QuoteStatistics, error)
	ExportAllQuotesToExcel(ctx context.Context, filename string) (string, error)
}

type Server struct {
	cfg       config.HTTPConfig
	registry  *catalog.Registry
	reducer   *wizard.Reducer
	rates     pricing.Rates
	sessions  SessionStore
	submitter Submitter
	admin     AdminStore
	limiter   RateLimiter
	logger    *zap.Logger

	httpServer *http.Server
}

func New(
	cfg config.HTTPConfig,
	registry *catalog.Registry,
	reducer *wizard.Reducer,
	rates pricing.Rates,
	sessions SessionStore,
	submitter Submitter,
	admin AdminStore,
	limiter RateLimiter,
	logger *zap.Logger,
) *Server {
	return &Server{
		cfg:       cfg,
		registry:  registry,
		reducer:   reducer,
		rates:     rates,
		sessions:  sessions,
		submitter: submitter,
		admin:     admin,
		limiter:   limiter,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/products", s.listProducts())
		api.GET("/products/:slug", s.getProduct())
		api.GET("/products/:slug/panel-options", s.panelOptions())

		api.POST("/sessions", s.createSession())
		api.GET("/sessions/:id", s.getSession())
		api.POST("/sessions/:id/actions", s.rateLimited("actions", 120), s.applyAction())
		api.POST("/sessions/:id/submit", s.rateLimited("submit", 5), s.submitSession())
		api.DELETE("/sessions/:id", s.clearSession())
	}

	admin := router.Group("/api/admin", s.requireAdminToken())
	{
		admin.GET("/quotes", s.listQuotes())
		admin.GET("/quotes/:id", s.getQuote())
		admin.PATCH("/quotes/:id/status", s.updateQuoteStatus())
		admin.GET("/stats", s.quoteStats())
		admin.POST("/quotes/export", s.exportQuotes())
	}

	return router
}

// Run serves until the context is cancelled, then drains in-flight
// requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.RequestTimeout,
		WriteTimeout: s.cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) rateLimited(action string, perMinute int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		exceeded, err := s.limiter.CheckRateLimit(c.Request.Context(), c.Param("id"), action, perMinute, time.Minute)
		if err != nil {
			// Rate limiting is advisory; a broken counter must not take
			// the wizard down.
			s.logger.Warn("Rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if exceeded {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdminToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AdminToken == "" || c.GetHeader("X-Admin-Token") != s.cfg.AdminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
