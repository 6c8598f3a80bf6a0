package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Ingest handlers

func (s *Server) handleIngestMobile(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	result, err := s.ports.Ingest.IngestMobile(c.Request.Context(), body, s.updateDocument(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleIngest(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	result, err := s.ports.Ingest.Ingest(c.Request.Context(), domain.IngestRequest{
		Source:         domain.SourceKind(c.Param("source")),
		DeviceID:       c.Query("device"),
		Date:           c.Query("date"),
		Body:           body,
		UpdateDocument: s.updateDocument(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return nil, false
	}
	return body, true
}

func (s *Server) updateDocument(c *gin.Context) bool {
	v, ok := c.GetQuery("update_document")
	if !ok {
		return s.opts.UpdateDocument
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return s.opts.UpdateDocument
	}
	return b
}

// Flow handlers

func (s *Server) handleAlign(c *gin.Context) {
	var in domain.AlignInput
	if !bindOptional(c, domain.FlowAlignment, &in) {
		return
	}
	result, err := s.ports.Flows.Align(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMorning(c *gin.Context) {
	var in domain.MorningInput
	if !bindOptional(c, domain.FlowMorning, &in) {
		return
	}
	result, err := s.ports.Flows.Morning(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleEvening(c *gin.Context) {
	var in domain.EveningInput
	if !bindOptional(c, domain.FlowEvening, &in) {
		return
	}
	result, err := s.ports.Flows.Evening(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRetry(c *gin.Context) {
	var result domain.FlowResult
	if !bindRequired(c, &result) {
		return
	}
	if err := s.ports.Flows.RetryWrite(c.Request.Context(), &result); err != nil {
		writeError(c, err)
		return
	}
	result.Written = true
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAction(c *gin.Context) {
	var in domain.ActionInput
	if !bindRequired(c, &in) {
		return
	}
	action, err := s.ports.Flows.ResolveAction(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

func (s *Server) handleRecord(c *gin.Context) {
	var in domain.RecordInput
	if !bindRequired(c, &in) {
		return
	}
	if in.Source == "" {
		in.Source = "http"
	}
	rec, err := s.ports.Flows.AddRecord(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleFocus(c *gin.Context) {
	var in domain.FocusInput
	if !bindRequired(c, &in) {
		return
	}
	result, err := s.ports.Flows.SetFocus(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetFocus(c *gin.Context) {
	wf, err := s.ports.Flows.GetFocus(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

// State handlers

func (s *Server) handleState(c *gin.Context) {
	st, err := s.ports.State.Get(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleRebuild(c *gin.Context) {
	st, err := s.ports.State.Rebuild(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleTrends(c *gin.Context) {
	windows, err := s.ports.State.Trends(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// bindOptional decodes a JSON body; an empty body leaves v untouched.
func bindOptional(c *gin.Context, flow domain.FlowKind, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(c, &domain.SchemaError{Field: "(body)", Reason: string(flow) + " input: " + err.Error()})
	return false
}

func bindRequired(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, &domain.SchemaError{Field: "(body)", Reason: err.Error()})
		return false
	}
	return true
}

// errorBody is the JSON body of a failed request.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`

	// Pending carries the computed result of a failed write so the
	// caller can POST it to /flows/retry.
	Pending *domain.FlowResult `json:"pending,omitempty"`
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status, kind := classify(err)
	body := errorBody{Error: err.Error(), Kind: kind}

	var persistErr *domain.PersistenceError
	if errors.As(err, &persistErr) {
		body.Pending = persistErr.Pending
	}
	c.JSON(status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSchema):
		return http.StatusBadRequest, "schema"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedSource):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAnalysis):
		return http.StatusBadGateway, "analysis"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, "persistence"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
