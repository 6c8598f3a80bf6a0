package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService validates, normalises and merges raw payloads.
type IngestService struct {
	state    *StateService
	registry driven.NormaliserRegistry
	archive  driven.RawArchive
	docs     *DocumentService
	now      func() time.Time
}

// NewIngestService creates an ingest service. archive and docs may be nil.
func NewIngestService(
	state *StateService,
	registry driven.NormaliserRegistry,
	archive driven.RawArchive,
	docs *DocumentService,
) *IngestService {
	return &IngestService{
		state:    state,
		registry: registry,
		archive:  archive,
		docs:     docs,
		now:      time.Now,
	}
}

// RawArchiveKey returns the archive key of a raw entry.
func RawArchiveKey(source domain.SourceKind, date, id string) string {
	return fmt.Sprintf("raw/%s/%s/%s.json", source, date, id)
}

// Ingest validates, normalises and merges a payload into the state of
// its date. A rejected payload is never partially applied.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingest " + string(req.Source))

	// 1. Validate shape
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Resolve date
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.registry.ResolveDate(req.Source, req.Body)
	}
	if date == "" {
		date = domain.FormatDate(s.now())
	}
	logger.Debug("Payload of %d bytes for %s", len(req.Body), date)

	// 3. Normalise before touching any state
	normalized, err := s.registry.Normalise(ctx, req.Source, req.Body)
	if err != nil {
		return nil, err
	}

	// 4. Merge under the date lock
	entry := domain.RawEntry{
		ID:         uuid.New().String(),
		Source:     req.Source,
		DeviceID:   req.DeviceID,
		IngestedAt: s.now(),
		Payload:    append(json.RawMessage(nil), req.Body...),
	}
	incoming := domain.NewDailyState(date)
	incoming.Raw[req.Source] = entry
	incoming.Normalized = *normalized

	state, corrected, err := s.state.Apply(ctx, domain.FlowIngest, incoming)
	if err != nil {
		return nil, err
	}
	logger.Debug("Merged %s entry %s (corrected=%v)", req.Source, entry.ID, corrected)

	// 5. Archive the verbatim payload
	if s.archive != nil {
		key := RawArchiveKey(req.Source, date, entry.ID)
		if err := s.archive.Put(ctx, key, req.Body); err != nil {
			logger.Warn("Failed to archive %s: %v", key, err)
		}
	}

	result := &domain.IngestResult{
		Date:       date,
		Source:     req.Source,
		EntryID:    entry.ID,
		Corrected:  corrected,
		Normalized: state.Normalized,
	}

	// 6. Refresh the Device Data block
	if req.UpdateDocument && s.docs != nil && !req.Source.IsText() {
		update := domain.DocumentUpdate{
			Path:          s.docs.DailyPath(date),
			DefaultHeader: s.docs.DailyHeader(ctx, date),
			Sections:      []domain.SectionUpdate{deviceDataSection(state.Normalized)},
		}
		result.DocumentPath = update.Path
		if err := s.docs.Apply(ctx, update); err != nil {
			return result, &domain.PersistenceError{
				Flow:   domain.FlowIngest,
				Date:   date,
				Target: "document " + update.Path,
				Err:    err,
				Pending: &domain.FlowResult{
					Flow:      domain.FlowIngest,
					Date:      date,
					StateKey:  date,
					Documents: []domain.DocumentUpdate{update},
				},
			}
		}
	}

	return result, nil
}

// IngestMobile parses a mobile upload, resolves its date from the
// reporting window and ingests it.
func (s *IngestService) IngestMobile(
	ctx context.Context,
	body []byte,
	updateDocument bool,
) (*domain.IngestResult, error) {
	upload, err := domain.ParseMobileUpload(body)
	if err != nil {
		return nil, err
	}
	date := upload.ResolveDate()
	if date == "" {
		return nil, &domain.SchemaError{
			Source: domain.SourceMobile,
			Field:  "rangeStart",
			Reason: "no calendar date in localDate, rangeStart, rangeEnd or generatedAt",
		}
	}
	return s.Ingest(ctx, domain.IngestRequest{
		Source:         domain.SourceMobile,
		DeviceID:       upload.DeviceID,
		Date:           date,
		Body:           body,
		UpdateDocument: updateDocument,
	})
}
