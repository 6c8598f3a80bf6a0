package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for daylog resources.
	uriScheme = "daylog://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the current day.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "today",
		Name:        "today",
		Description: "Daily state of the current date",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// Template for the state of a date.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "state/{date}",
		Name:        "daily-state",
		Description: "Raw payloads, normalized telemetry and pending action of a date",
		MIMEType:    "application/json",
	}, s.handleStateResource)

	// Template for the trend windows ending at a date.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "trends/{date}",
		Name:        "trends",
		Description: "Rolling trend windows ending at a date",
		MIMEType:    "application/json",
	}, s.handleTrendsResource)
}

// handleTodayResource returns the state of the current date.
func (s *Server) handleTodayResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	st, err := s.ports.State.Get(ctx, domain.Today())
	if err != nil {
		return nil, fmt.Errorf("getting state: %w", err)
	}
	return jsonResource(req.Params.URI, st)
}

// handleStateResource returns the state of the date in the URI.
func (s *Server) handleStateResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract date from URI: daylog://state/{date}
	date := extractDate(req.Params.URI, "state/")
	if date == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	st, err := s.ports.State.Get(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("getting state: %w", err)
	}
	return jsonResource(req.Params.URI, st)
}

// handleTrendsResource returns the trend windows ending at the date in the URI.
func (s *Server) handleTrendsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	date := extractDate(req.Params.URI, "trends/")
	if date == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	windows, err := s.ports.State.Trends(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("computing trends: %w", err)
	}
	return jsonResource(req.Params.URI, windows)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDate extracts a valid date from a URI like daylog://<kind>{date}.
func extractDate(uri, kind string) string {
	prefix := uriScheme + kind
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	date := strings.TrimPrefix(uri, prefix)
	if _, err := domain.ParseDate(date); err != nil {
		return ""
	}
	return date
}
