package domain

import (
	"strings"
	"time"
)

// FlowKind names an orchestrated run.
type FlowKind string

// Flow kinds.
const (
	FlowIngest    FlowKind = "ingest"
	FlowAlignment FlowKind = "alignment"
	FlowMorning   FlowKind = "morning"
	FlowEvening   FlowKind = "evening"
	FlowAction    FlowKind = "action"
	FlowRecord    FlowKind = "record"
	FlowFocus     FlowKind = "focus"
)

// SectionKey identifies a section within a document. When Parent is
// set the section is a subsection of the Parent heading.
type SectionKey struct {
	Heading     string `json:"heading"`
	Level       int    `json:"level"`
	Parent      string `json:"parent,omitempty"`
	ParentLevel int    `json:"parent_level,omitempty"`

	// Marker pins the section to a hidden identifier so that it is found
	// even after its heading is renamed.
	Marker string `json:"marker,omitempty"`
}

// String returns the key in "Parent/Heading" form.
func (k SectionKey) String() string {
	if k.Parent == "" {
		return k.Heading
	}
	return k.Parent + "/" + k.Heading
}

// SectionMode selects how a section body is written.
type SectionMode string

// Section write modes.
const (
	// SectionReplace replaces the whole body (idempotent).
	SectionReplace SectionMode = "replace"

	// SectionAppendItems appends list items that are not already present.
	SectionAppendItems SectionMode = "append_items"
)

// SectionUpdate is one rendered section of a flow result.
type SectionUpdate struct {
	Key   SectionKey  `json:"key"`
	Mode  SectionMode `json:"mode"`
	Body  string      `json:"body,omitempty"`
	Items []string    `json:"items,omitempty"`
}

// DocumentUpdate is the set of section writes for one document.
type DocumentUpdate struct {
	Path          string          `json:"path"`
	DefaultHeader string          `json:"default_header"`
	Sections      []SectionUpdate `json:"sections"`
	Frontmatter   map[string]any  `json:"frontmatter,omitempty"`
}

// FlowResult is the output of one flow run. It is returned to the caller
// and can be replayed to retry the document writes alone.
type FlowResult struct {
	Flow      FlowKind         `json:"flow"`
	Date      string           `json:"date"`
	StateKey  string           `json:"state_key"`
	Documents []DocumentUpdate `json:"documents"`

	PendingAction *PendingAction   `json:"pending_action,omitempty"`
	Alignment     *AlignmentResult `json:"alignment,omitempty"`
	Morning       *MorningResult   `json:"morning,omitempty"`
	Evening       *EveningResult   `json:"evening,omitempty"`

	// Written is false until every document write has succeeded.
	Written bool `json:"written"`
}

// Sections flattens the result into section key -> rendered text.
func (r *FlowResult) Sections() map[string]string {
	out := make(map[string]string)
	for _, doc := range r.Documents {
		for _, s := range doc.Sections {
			body := s.Body
			if s.Mode == SectionAppendItems {
				body = joinItems(s.Items)
			}
			out[s.Key.String()] = body
		}
	}
	return out
}

// Paths returns the document paths touched by the result.
func (r *FlowResult) Paths() []string {
	paths := make([]string, 0, len(r.Documents))
	for _, doc := range r.Documents {
		paths = append(paths, doc.Path)
	}
	return paths
}

func joinItems(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// AlignInput is the input of the alignment flow.
type AlignInput struct {
	Date string `json:"date"`
}

// MorningInput is the input of the morning flow.
type MorningInput struct {
	Date string `json:"date"`
	Text string `json:"text,omitempty"`
}

// EveningInput is the input of the evening flow.
type EveningInput struct {
	Date        string `json:"date"`
	Journal     string `json:"journal"`
	Mood        string `json:"mood,omitempty"`
	EnergyDrain string `json:"energy_drain,omitempty"`
	Achievement string `json:"achievement,omitempty"`
	FollowUp    string `json:"follow_up,omitempty"`
	Reflection  string `json:"reflection,omitempty"`
}

// ActionInput resolves the pending action of a date.
type ActionInput struct {
	Date     string         `json:"date"`
	ActionID string         `json:"action_id"`
	Decision ActionDecision `json:"decision"`

	// Text replaces the action text when Decision is modify.
	Text string `json:"text,omitempty"`
}

// RecordInput adds a free-form record to a date.
type RecordInput struct {
	Date   string    `json:"date"`
	Text   string    `json:"text"`
	Source string    `json:"source,omitempty"`
	At     time.Time `json:"at,omitempty"`
}

// FocusInput sets the weekly focus of the ISO week containing Date.
type FocusInput struct {
	Date  string `json:"date"`
	Focus Focus  `json:"focus"`
}

// WeeklyFocus is the focus saved in an ISO week document. Focus is nil
// while the week has none; Options lists the active goals to pick from.
type WeeklyFocus struct {
	Week    string   `json:"week"`
	Path    string   `json:"path"`
	Focus   *Focus   `json:"focus,omitempty"`
	Options []string `json:"options,omitempty"`
}

// IngestResult is returned by a successful ingestion.
type IngestResult struct {
	Date         string     `json:"date"`
	Source       SourceKind `json:"source"`
	EntryID      string     `json:"entry_id"`
	Corrected    bool       `json:"corrected"`
	Normalized   Normalized `json:"normalized"`
	DocumentPath string     `json:"document_path,omitempty"`
}
