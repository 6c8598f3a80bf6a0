package domain

import (
	"encoding/json"
	"time"
)

// DailyState is the canonical record for one calendar date.
// Normalized is a cache: it must always be derivable by normalising
// the entries in Raw, and is never edited by hand.
type DailyState struct {
	Date string `json:"date"`

	// Raw holds the latest raw payload per source kind.
	// Every ingestion is additionally kept in the audit history of the store.
	Raw map[SourceKind]RawEntry `json:"raw"`

	Normalized Normalized `json:"normalized"`

	// PendingAction is the proposed-but-unconfirmed micro-action of the day.
	PendingAction *PendingAction `json:"pending_action,omitempty"`

	// Audit records user events (action decisions) that are not telemetry.
	Audit []AuditEntry `json:"audit,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Version is the commit counter used for optimistic concurrency.
	// Zero means the state has never been saved.
	Version int64 `json:"-"`
}

// RawEntry is one ingested raw payload.
type RawEntry struct {
	ID         string          `json:"id"`
	Source     SourceKind      `json:"source"`
	DeviceID   string          `json:"device_id,omitempty"`
	IngestedAt time.Time       `json:"ingested_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ActionStatus is the lifecycle state of a pending action.
type ActionStatus string

// Action statuses.
const (
	ActionPending  ActionStatus = "pending"
	ActionAccepted ActionStatus = "accepted"
	ActionSkipped  ActionStatus = "skipped"
	ActionModified ActionStatus = "modified"
)

// ActionDecision is the user's answer to a pending action.
type ActionDecision string

// Action decisions.
const (
	DecisionAccept ActionDecision = "accept"
	DecisionSkip   ActionDecision = "skip"
	DecisionModify ActionDecision = "modify"
)

// IsValid returns true if the decision is recognised.
func (d ActionDecision) IsValid() bool {
	switch d {
	case DecisionAccept, DecisionSkip, DecisionModify:
		return true
	default:
		return false
	}
}

// Status returns the action status a decision moves to.
func (d ActionDecision) Status() ActionStatus {
	switch d {
	case DecisionAccept:
		return ActionAccepted
	case DecisionSkip:
		return ActionSkipped
	case DecisionModify:
		return ActionModified
	default:
		return ActionPending
	}
}

// PendingAction is the morning micro-action awaiting a decision.
type PendingAction struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	AlignedWith string       `json:"aligned_with,omitempty"`
	Status      ActionStatus `json:"status"`
	ProposedAt  time.Time    `json:"proposed_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
}

// AuditEntry is a user event recorded against a date.
type AuditEntry struct {
	Kind     string         `json:"kind"`
	At       time.Time      `json:"at"`
	ActionID string         `json:"action_id,omitempty"`
	Decision ActionDecision `json:"decision,omitempty"`
	Text     string         `json:"text,omitempty"`
}

// NewDailyState returns an empty state for date.
func NewDailyState(date string) *DailyState {
	return &DailyState{
		Date: date,
		Raw:  make(map[SourceKind]RawEntry),
	}
}

// IsNew returns true if the state has never been saved.
func (s *DailyState) IsNew() bool {
	return s.Version == 0
}

// Clone returns a deep copy of the state.
func (s *DailyState) Clone() *DailyState {
	out := &DailyState{
		Date:       s.Date,
		Raw:        make(map[SourceKind]RawEntry, len(s.Raw)),
		Normalized: s.Normalized.Clone(),
		UpdatedAt:  s.UpdatedAt,
		Version:    s.Version,
	}
	for k, v := range s.Raw {
		v.Payload = append(json.RawMessage(nil), v.Payload...)
		out.Raw[k] = v
	}
	if s.PendingAction != nil {
		pa := *s.PendingAction
		if pa.ResolvedAt != nil {
			at := *pa.ResolvedAt
			pa.ResolvedAt = &at
		}
		out.PendingAction = &pa
	}
	if s.Audit != nil {
		out.Audit = make([]AuditEntry, len(s.Audit))
		copy(out.Audit, s.Audit)
	}
	return out
}

// Text returns the free text of a text source kind, or "".
func (s *DailyState) Text(kind SourceKind) string {
	entry, ok := s.Raw[kind]
	if !ok {
		return ""
	}
	var body TextPayload
	if err := json.Unmarshal(entry.Payload, &body); err != nil {
		return ""
	}
	return body.Text
}
