package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
	"github.com/custodia-labs/daylog/internal/logger"
	"github.com/custodia-labs/daylog/internal/sections"
)

// Ensure FlowService implements the interface.
var _ driving.FlowService = (*FlowService)(nil)

// DefaultAnalysisTimeout bounds a single analysis call.
const DefaultAnalysisTimeout = 90 * time.Second

// auditActionDecision is the audit kind of a pending-action decision.
const auditActionDecision = "action_decision"

// FlowConfig configures the flow orchestrator.
type FlowConfig struct {
	// AnalysisTimeout bounds each analysis call. Zero selects the default.
	AnalysisTimeout time.Duration

	// ActiveGoals limits the goals passed to analysis. Empty means every
	// goal that is not done.
	ActiveGoals []string
}

// FlowService runs the alignment, morning and evening flows.
// Each flow reads state, runs analysis, then persists state and
// documents. Analysis failures abort before any write.
type FlowService struct {
	state    *StateService
	records  driven.RecordStore
	docs     *DocumentService
	analyzer driven.Analyzer
	goals    driven.GoalSource
	cfg      FlowConfig
	now      func() time.Time
}

// NewFlowService creates a flow service. goals may be nil.
func NewFlowService(
	state *StateService,
	records driven.RecordStore,
	docs *DocumentService,
	analyzer driven.Analyzer,
	goals driven.GoalSource,
	cfg FlowConfig,
) *FlowService {
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = DefaultAnalysisTimeout
	}
	return &FlowService{
		state:    state,
		records:  records,
		docs:     docs,
		analyzer: analyzer,
		goals:    goals,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Align runs the alignment flow: metrics, snapshot, value board, pattern
// and focus under the Alignment section of the day's document.
func (s *FlowService) Align(ctx context.Context, in domain.AlignInput) (*domain.FlowResult, error) {
	logger.Section("Alignment flow")

	// 1. Resolve date
	date, _, err := s.resolveDate(domain.FlowAlignment, in.Date)
	if err != nil {
		return nil, err
	}

	// 2. Gather context
	req, state, err := s.analysisContext(ctx, domain.FlowAlignment, date, "")
	if err != nil {
		return nil, err
	}

	// 3. Analyse
	res, err := runAnalysis(ctx, s.cfg.AnalysisTimeout, domain.FlowAlignment, date,
		func(ctx context.Context) (*domain.AlignmentResult, error) {
			return s.analyzer.Align(ctx, req)
		})
	if err != nil {
		return nil, err
	}

	// 4. Render and write
	sub := func(heading, body string) domain.SectionUpdate {
		return domain.SectionUpdate{
			Key:  domain.SectionKey{Heading: heading, Level: 3, Parent: domain.HeadingAlignment, ParentLevel: 2},
			Mode: domain.SectionReplace,
			Body: body,
		}
	}
	result := &domain.FlowResult{
		Flow:     domain.FlowAlignment,
		Date:     date,
		StateKey: date,
		Documents: []domain.DocumentUpdate{{
			Path:          s.docs.DailyPath(date),
			DefaultHeader: s.docs.DailyHeader(ctx, date),
			Sections: []domain.SectionUpdate{
				sub(domain.HeadingMetrics, RenderMetrics(state.Normalized, req.Trends)),
				sub(domain.HeadingSnapshot, strings.TrimSpace(res.Snapshot)),
				sub(domain.HeadingValueBoard, RenderValueBoard(res.ValueBoard)),
				sub(domain.HeadingPattern, strings.TrimSpace(res.Pattern)),
				sub(domain.HeadingFocus, RenderFocus(res.Focus)),
			},
		}},
		Alignment: res,
	}
	return s.write(ctx, result)
}

// Morning runs the morning flow. The proposed micro-action is held on
// the day's state as pending until it is resolved.
func (s *FlowService) Morning(ctx context.Context, in domain.MorningInput) (*domain.FlowResult, error) {
	logger.Section("Morning flow")

	// 1. Resolve date
	date, _, err := s.resolveDate(domain.FlowMorning, in.Date)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)

	// 2. Gather context
	req, state, err := s.analysisContext(ctx, domain.FlowMorning, date, text)
	if err != nil {
		return nil, err
	}
	req.PendingAction = state.PendingAction

	// 3. Analyse
	res, err := runAnalysis(ctx, s.cfg.AnalysisTimeout, domain.FlowMorning, date,
		func(ctx context.Context) (*domain.MorningResult, error) {
			return s.analyzer.Morning(ctx, req)
		})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.MicroAction) == "" {
		return nil, &domain.AnalysisError{Flow: domain.FlowMorning, Date: date, Err: errors.New("no micro-action proposed")}
	}

	now := s.now()
	action := &domain.PendingAction{
		ID:          uuid.New().String(),
		Text:        strings.TrimSpace(res.MicroAction),
		AlignedWith: strings.TrimSpace(res.AlignedWith),
		Status:      domain.ActionPending,
		ProposedAt:  now,
	}

	// 4. Persist the pending action and the check-in
	_, err = s.state.Update(ctx, domain.FlowMorning, date, func(st *domain.DailyState) error {
		st.PendingAction = action
		if text != "" {
			entry, err := textEntry(domain.SourceCheckin, text, now)
			if err != nil {
				return err
			}
			st.Raw[domain.SourceCheckin] = entry
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 5. Write the micro-action section
	result := &domain.FlowResult{
		Flow:     domain.FlowMorning,
		Date:     date,
		StateKey: date,
		Documents: []domain.DocumentUpdate{{
			Path:          s.docs.DailyPath(date),
			DefaultHeader: s.docs.DailyHeader(ctx, date),
			Sections:      []domain.SectionUpdate{microActionSection(action)},
		}},
		PendingAction: action,
		Morning:       res,
	}
	return s.write(ctx, result)
}

// ResolveAction records a decision on the pending action of a date.
func (s *FlowService) ResolveAction(ctx context.Context, in domain.ActionInput) (*domain.PendingAction, error) {
	logger.Section("Action decision")

	// 1. Validate input
	date, _, err := s.resolveDate(domain.FlowAction, in.Date)
	if err != nil {
		return nil, err
	}
	if !in.Decision.IsValid() {
		return nil, &domain.ValidationError{
			Flow: domain.FlowAction, Date: date,
			Message: fmt.Sprintf("decision %q must be accept, skip or modify", in.Decision),
		}
	}
	text := strings.TrimSpace(in.Text)
	if in.Decision == domain.DecisionModify && text == "" {
		return nil, &domain.ValidationError{Flow: domain.FlowAction, Date: date, Message: "modify needs the new action text"}
	}

	// 2. Record the decision on the state
	now := s.now()
	var action domain.PendingAction
	_, err = s.state.Update(ctx, domain.FlowAction, date, func(st *domain.DailyState) error {
		pa := st.PendingAction
		switch {
		case pa == nil:
			return &domain.ValidationError{Flow: domain.FlowAction, Date: date, Message: "no pending action"}
		case in.ActionID != "" && in.ActionID != pa.ID:
			return &domain.ValidationError{
				Flow: domain.FlowAction, Date: date,
				Message: fmt.Sprintf("action %s is not the pending action", in.ActionID),
			}
		case pa.Status != domain.ActionPending:
			return &domain.ValidationError{
				Flow: domain.FlowAction, Date: date,
				Message: fmt.Sprintf("action already %s", pa.Status),
			}
		}

		pa.Status = in.Decision.Status()
		resolved := now
		pa.ResolvedAt = &resolved
		if in.Decision == domain.DecisionModify {
			pa.Text = text
		}
		st.Audit = append(st.Audit, domain.AuditEntry{
			Kind:     auditActionDecision,
			At:       now,
			ActionID: pa.ID,
			Decision: in.Decision,
			Text:     pa.Text,
		})
		action = *pa
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 3. Mirror into the document
	result := &domain.FlowResult{
		Flow:     domain.FlowAction,
		Date:     date,
		StateKey: date,
		Documents: []domain.DocumentUpdate{{
			Path:          s.docs.DailyPath(date),
			DefaultHeader: s.docs.DailyHeader(ctx, date),
			Sections: []domain.SectionUpdate{
				microActionSection(&action),
				journalItems(domain.HeadingPracticeReview,
					fmt.Sprintf("[%s] %s: %s", now.Format("15:04"), action.Status, action.Text)),
			},
		}},
		PendingAction: &action,
	}
	if _, err := s.write(ctx, result); err != nil {
		return &action, err
	}
	return &action, nil
}

// Evening runs the evening flow. An empty journal is a ValidationError
// and nothing is written.
func (s *FlowService) Evening(ctx context.Context, in domain.EveningInput) (*domain.FlowResult, error) {
	logger.Section("Evening flow")

	// 1. Validate input
	date, day, err := s.resolveDate(domain.FlowEvening, in.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Journal) == "" {
		return nil, &domain.ValidationError{Flow: domain.FlowEvening, Date: date, Message: "journal is empty"}
	}
	text := composeJournal(in)

	// 2. Gather context
	req, _, err := s.analysisContext(ctx, domain.FlowEvening, date, text)
	if err != nil {
		return nil, err
	}
	req.IsWeekEnd = domain.IsISOWeekEnd(day)

	// 3. Analyse
	res, err := runAnalysis(ctx, s.cfg.AnalysisTimeout, domain.FlowEvening, date,
		func(ctx context.Context) (*domain.EveningResult, error) {
			return s.analyzer.Evening(ctx, req)
		})
	if err != nil {
		return nil, err
	}

	// 4. Build document updates
	result := &domain.FlowResult{
		Flow:      domain.FlowEvening,
		Date:      date,
		StateKey:  date,
		Documents: s.eveningDocuments(ctx, date, day, in, res, req.IsWeekEnd),
		Evening:   res,
	}

	// 5. Persist the journal
	now := s.now()
	_, err = s.state.Update(ctx, domain.FlowEvening, date, func(st *domain.DailyState) error {
		entry, err := textEntry(domain.SourceJournal, text, now)
		if err != nil {
			return err
		}
		st.Raw[domain.SourceJournal] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 6. Write documents
	return s.write(ctx, result)
}

func (s *FlowService) eveningDocuments(
	ctx context.Context,
	date string,
	day time.Time,
	in domain.EveningInput,
	res *domain.EveningResult,
	weekEnd bool,
) []domain.DocumentUpdate {
	summary := strings.TrimSpace(res.Summary)
	if summary == "" {
		summary = "No summary."
	}

	frontmatter := map[string]any{}
	mood := strings.TrimSpace(res.Mood)
	if mood == "" {
		mood = strings.TrimSpace(in.Mood)
	}
	if mood != "" {
		frontmatter["mood"] = mood
	}
	if len(res.Topics) > 0 {
		frontmatter["topics"] = res.Topics
	}
	if len(res.LinkedProjects) > 0 {
		frontmatter["linked_projects"] = res.LinkedProjects
	}

	docs := []domain.DocumentUpdate{{
		Path:          s.docs.DailyPath(date),
		DefaultHeader: s.docs.DailyHeader(ctx, date),
		Sections: []domain.SectionUpdate{
			{
				Key:  domain.SectionKey{Heading: domain.HeadingEveningSummary, Level: 2},
				Mode: domain.SectionReplace,
				Body: summary,
			},
			{
				Key:  domain.SectionKey{Heading: domain.HeadingEveningAdvice, Level: 2},
				Mode: domain.SectionReplace,
				Body: RenderList(res.Advice, "- Nothing to flag today."),
			},
		},
		Frontmatter: frontmatter,
	}}

	var tasks []string
	for _, task := range res.TomorrowTasks {
		if task = strings.TrimSpace(task); task != "" {
			tasks = append(tasks, "[ ] "+task)
		}
	}
	if len(tasks) > 0 {
		next := domain.FormatDate(day.AddDate(0, 0, 1))
		docs = append(docs, domain.DocumentUpdate{
			Path:          s.docs.DailyPath(next),
			DefaultHeader: s.docs.DailyHeader(ctx, next),
			Sections: []domain.SectionUpdate{{
				Key:   domain.SectionKey{Heading: domain.HeadingTasks, Level: 2},
				Mode:  domain.SectionAppendItems,
				Items: tasks,
			}},
		})
	}

	if weekEnd {
		review := strings.TrimSpace(res.WeeklyReview)
		if review == "" {
			review = summary
		}
		docs = append(docs, domain.DocumentUpdate{
			Path:          s.docs.WeeklyPath(day),
			DefaultHeader: s.docs.WeeklyHeader(day),
			Sections: []domain.SectionUpdate{
				{
					Key:  domain.SectionKey{Heading: domain.HeadingWeeklyReview, Level: 2},
					Mode: domain.SectionReplace,
					Body: review,
				},
				{
					Key:  domain.SectionKey{Heading: domain.HeadingNextWeekPlan, Level: 2},
					Mode: domain.SectionReplace,
					Body: RenderList(res.WeeklyPlan, "- No plan yet."),
				},
			},
		})
	}
	return docs
}

// AddRecord stores a free-form record and mirrors it into the journal.
func (s *FlowService) AddRecord(ctx context.Context, in domain.RecordInput) (*domain.Record, error) {
	logger.Section("Record")

	at := in.At
	if at.IsZero() {
		at = s.now()
	}
	dateIn := in.Date
	if dateIn == "" {
		dateIn = domain.FormatDate(at)
	}
	date, _, err := s.resolveDate(domain.FlowRecord, dateIn)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, &domain.ValidationError{Flow: domain.FlowRecord, Date: date, Message: "record text is empty"}
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = "cli"
	}

	rec := domain.Record{
		ID:        uuid.New().String(),
		Date:      date,
		Source:    source,
		Text:      text,
		CreatedAt: at,
	}
	if err := s.records.Add(ctx, rec); err != nil {
		return nil, &domain.PersistenceError{Flow: domain.FlowRecord, Date: date, Target: "records", Err: err}
	}
	logger.Debug("Stored record %s for %s", rec.ID, date)

	result := &domain.FlowResult{
		Flow:     domain.FlowRecord,
		Date:     date,
		StateKey: date,
		Documents: []domain.DocumentUpdate{{
			Path:          s.docs.DailyPath(date),
			DefaultHeader: s.docs.DailyHeader(ctx, date),
			Sections:      []domain.SectionUpdate{journalItems(domain.HeadingRecord, formatRecord(rec))},
		}},
	}
	if _, err := s.write(ctx, result); err != nil {
		return &rec, err
	}
	return &rec, nil
}

// SetFocus writes the weekly focus into the ISO week document of the date.
func (s *FlowService) SetFocus(ctx context.Context, in domain.FocusInput) (*domain.FlowResult, error) {
	logger.Section("Weekly focus")

	date, day, err := s.resolveDate(domain.FlowFocus, in.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Focus.Name) == "" {
		return nil, &domain.ValidationError{Flow: domain.FlowFocus, Date: date, Message: "focus name is empty"}
	}

	result := &domain.FlowResult{
		Flow:     domain.FlowFocus,
		Date:     date,
		StateKey: date,
		Documents: []domain.DocumentUpdate{{
			Path:          s.docs.WeeklyPath(day),
			DefaultHeader: s.docs.WeeklyHeader(day),
			Sections: []domain.SectionUpdate{{
				Key:  domain.SectionKey{Heading: domain.HeadingFocus, Level: 2},
				Mode: domain.SectionReplace,
				Body: RenderFocus(in.Focus),
			}},
		}},
	}
	return s.write(ctx, result)
}

// GetFocus returns the focus saved for the ISO week of the date and the
// active goals it may be chosen from. A week without a document or a
// focus section is not an error.
func (s *FlowService) GetFocus(ctx context.Context, date string) (*domain.WeeklyFocus, error) {
	_, day, err := s.resolveDate(domain.FlowFocus, date)
	if err != nil {
		return nil, err
	}

	out := &domain.WeeklyFocus{Week: domain.ISOWeekID(day), Path: s.docs.WeeklyPath(day)}
	text, err := s.docs.Read(ctx, out.Path)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", out.Path, err)
	default:
		if f, ok := ParseFocus(sections.ExtractSection(text, domain.HeadingFocus, 2)); ok {
			out.Focus = &f
		}
	}

	if s.goals != nil {
		graph, err := s.goals.Load(ctx)
		if err != nil {
			logger.Warn("Failed to load goals: %v", err)
		} else {
			out.Options = graph.ActiveGoals(s.cfg.ActiveGoals)
		}
	}
	return out, nil
}

// RetryWrite replays the document writes of a result whose write failed.
// Section writes are idempotent, so documents written before the failure
// are left unchanged.
func (s *FlowService) RetryWrite(ctx context.Context, result *domain.FlowResult) error {
	if result == nil {
		return fmt.Errorf("%w: no result to retry", domain.ErrInvalidInput)
	}
	logger.Section("Retry " + string(result.Flow) + " write")
	_, err := s.write(ctx, result)
	return err
}

// write applies every document update of result. A failure returns a
// *domain.PersistenceError carrying result for RetryWrite.
func (s *FlowService) write(ctx context.Context, result *domain.FlowResult) (*domain.FlowResult, error) {
	result.Written = false
	for _, doc := range result.Documents {
		if err := s.docs.Apply(ctx, doc); err != nil {
			return nil, &domain.PersistenceError{
				Flow:    result.Flow,
				Date:    result.Date,
				Target:  "document " + doc.Path,
				Err:     err,
				Pending: result,
			}
		}
	}
	result.Written = true
	return result, nil
}

// resolveDate defaults an empty date to today and validates the rest.
func (s *FlowService) resolveDate(flow domain.FlowKind, date string) (string, time.Time, error) {
	if strings.TrimSpace(date) == "" {
		date = domain.FormatDate(s.now())
	}
	t, err := domain.ParseDate(date)
	if err != nil {
		return "", time.Time{}, &domain.ValidationError{Flow: flow, Date: date, Message: "date must be YYYY-MM-DD"}
	}
	return domain.FormatDate(t), t, nil
}

// analysisContext loads everything the analysis of a flow needs.
// A missing or unreadable goal graph is logged and left out.
func (s *FlowService) analysisContext(
	ctx context.Context,
	flow domain.FlowKind,
	date, text string,
) (domain.AnalysisRequest, *domain.DailyState, error) {
	state, err := s.state.Load(ctx, date)
	if err != nil {
		return domain.AnalysisRequest{}, nil, err
	}
	trends, err := s.state.Trends(ctx, date)
	if err != nil {
		return domain.AnalysisRequest{}, nil, err
	}

	req := domain.AnalysisRequest{
		Flow:       flow,
		Date:       date,
		Normalized: state.Normalized,
		Trends:     trends,
		Text:       text,
	}

	if s.records != nil {
		records, err := s.records.ListByDate(ctx, date)
		if err != nil {
			return domain.AnalysisRequest{}, nil, fmt.Errorf("list records %s: %w", date, err)
		}
		for _, r := range records {
			req.Records = append(req.Records, formatRecord(r))
		}
	}

	if s.goals != nil {
		graph, err := s.goals.Load(ctx)
		if err != nil {
			logger.Warn("Failed to load goals: %v", err)
		} else if !graph.IsEmpty() {
			req.Goals = graph
			req.ActiveGoals = graph.ActiveGoals(s.cfg.ActiveGoals)
		}
	}

	logger.Debug("Analysis context for %s: %d trend window(s), %d record(s)", date, len(req.Trends), len(req.Records))
	return req, state, nil
}

// runAnalysis calls the analyzer under the flow timeout. Errors and
// timeouts come back as *domain.AnalysisError.
func runAnalysis[T any](
	ctx context.Context,
	timeout time.Duration,
	flow domain.FlowKind,
	date string,
	call func(context.Context) (*T, error),
) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *T
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		res, err := call(ctx)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		if o.err == nil && o.res == nil {
			o.err = errors.New("empty analysis result")
		}
		if o.err != nil {
			return nil, &domain.AnalysisError{Flow: flow, Date: date, Err: o.err}
		}
		logger.Debug("Analysis for %s %s took %s", flow, date, time.Since(start).Round(time.Millisecond))
		return o.res, nil
	case <-ctx.Done():
		return nil, &domain.AnalysisError{
			Flow: flow,
			Date: date,
			Err:  fmt.Errorf("no answer within %s: %w", timeout, ctx.Err()),
		}
	}
}

func textEntry(kind domain.SourceKind, text string, at time.Time) (domain.RawEntry, error) {
	body, err := json.Marshal(domain.TextPayload{Text: text, At: at})
	if err != nil {
		return domain.RawEntry{}, fmt.Errorf("encode %s text: %w", kind, err)
	}
	return domain.RawEntry{
		ID:         uuid.New().String(),
		Source:     kind,
		IngestedAt: at,
		Payload:    body,
	}, nil
}

func formatRecord(r domain.Record) string {
	return fmt.Sprintf("[%s] %s", r.CreatedAt.Format("15:04"), r.Text)
}

// composeJournal appends the labelled evening prompts to the journal text.
func composeJournal(in domain.EveningInput) string {
	parts := []string{strings.TrimSpace(in.Journal)}
	for _, p := range []struct{ label, value string }{
		{"Mood", in.Mood},
		{"Energy drain", in.EnergyDrain},
		{"Achievement", in.Achievement},
		{"Follow-up", in.FollowUp},
		{"Reflection", in.Reflection},
	} {
		if v := strings.TrimSpace(p.value); v != "" {
			parts = append(parts, p.label+": "+v)
		}
	}
	return strings.Join(parts, "\n")
}
