package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/daylog/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const instructions = `daylog keeps one record per day built from phone, wearable and journal
telemetry. Call "state" before advising on a day. The morning and evening
tools write into the user's vault; ask before calling them twice for the
same date. Dates are YYYY-MM-DD and default to today.`

const shutdownGrace = 5 * time.Second

// Options tune what the server offers and who may call it.
type Options struct {
	// Token, when set, must arrive as "Authorization: Bearer <token>" on
	// every HTTP request. Stdio ignores it.
	Token string
	// ReadOnly offers the state tool and the resources only.
	ReadOnly bool
}

// Server exposes the ports as MCP tools and resources.
type Server struct {
	ports  *Ports
	opts   Options
	server *mcp.Server
	tools  []string
}

// NewServer registers the tools and resources allowed by opts.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		opts:  opts,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "daylog", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Tools lists the offered tool names in registration order.
func (s *Server) Tools() []string {
	return s.tools
}

// Run serves over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// ListenHTTP serves the streamable HTTP transport on addr until ctx ends.
func (s *Server) ListenHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	})
	defer stop()

	logger.Info("mcp: listening on %s (auth %t, read-only %t)", ln.Addr(), s.opts.Token != "", s.opts.ReadOnly)
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the streamable HTTP handler behind the token check.
func (s *Server) Handler() http.Handler {
	var h http.Handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
	if s.opts.Token != "" {
		h = requireToken(s.opts.Token, h)
	}
	return logRequests(h)
}

func requireToken(token string, next http.Handler) http.Handler {
	want := []byte(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="daylog"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("mcp: %s %s from %s in %s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start).Round(time.Millisecond))
	})
}
