package httpapi

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/daylog/internal/logger"
)

// maxBodySize bounds request bodies.
const maxBodySize = 10 << 20 // 10MB

// Options configures the HTTP server.
type Options struct {
	// Token, when set, is required as "Authorization: Bearer <token>"
	// on every route except /healthz.
	Token string

	// UpdateDocument is the default of the update_document query parameter.
	UpdateDocument bool
}

// Server is the HTTP boundary of daylog.
type Server struct {
	ports  *Ports
	opts   Options
	router *gin.Engine
}

// NewServer creates a server with the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	gin.DefaultWriter = logger.Writer()
	gin.DefaultErrorWriter = logger.Writer()
	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	s := &Server{
		ports:  ports,
		opts:   opts,
		router: router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/", s.requireToken)
	{
		api.POST("/ingest", s.handleIngestMobile)
		api.POST("/ingest/:source", s.handleIngest)

		api.POST("/flows/alignment", s.handleAlign)
		api.POST("/flows/morning", s.handleMorning)
		api.POST("/flows/evening", s.handleEvening)
		api.POST("/flows/retry", s.handleRetry)

		api.POST("/actions", s.handleAction)
		api.POST("/records", s.handleRecord)
		api.GET("/focus", s.handleGetFocus)
		api.POST("/focus", s.handleFocus)

		api.GET("/state/:date", s.handleState)
		api.POST("/state/:date/rebuild", s.handleRebuild)
		api.GET("/trends/:date", s.handleTrends)
	}

	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck // best effort
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) requireToken(c *gin.Context) {
	if s.opts.Token == "" {
		c.Next()
		return
	}
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid bearer token"})
		return
	}
	c.Next()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
