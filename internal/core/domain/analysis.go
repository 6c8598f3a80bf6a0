package domain

// AnalysisRequest is the structured context handed to the analysis function.
type AnalysisRequest struct {
	Flow FlowKind `json:"flow"`
	Date string   `json:"date"`

	Normalized Normalized    `json:"normalized"`
	Trends     []TrendWindow `json:"trends"`

	// Text is the free text of the run (check-in or journal).
	Text string `json:"text,omitempty"`

	// Records are the free-form records of the date.
	Records []string `json:"records,omitempty"`

	Goals       *GoalGraph `json:"goals,omitempty"`
	ActiveGoals []string   `json:"active_goals,omitempty"`

	PendingAction *PendingAction `json:"pending_action,omitempty"`

	// IsWeekEnd is set when the date closes an ISO week.
	IsWeekEnd bool `json:"is_week_end,omitempty"`
}

// ValueBoardItem is one row of the alignment value board.
type ValueBoardItem struct {
	Value   string `json:"value"`
	Role    string `json:"role"`
	Trend   string `json:"trend"`
	Summary string `json:"summary"`
}

// Focus is the current focus statement.
type Focus struct {
	Name   string `json:"name"`
	Intent string `json:"intent"`
	Why    string `json:"why"`
}

// AlignmentResult is the output of the alignment analysis.
type AlignmentResult struct {
	Snapshot   string           `json:"snapshot"`
	ValueBoard []ValueBoardItem `json:"value_board"`
	Pattern    string           `json:"pattern"`
	Focus      Focus            `json:"focus"`
}

// MorningResult is the output of the morning analysis.
type MorningResult struct {
	MicroAction string   `json:"micro_action"`
	AlignedWith string   `json:"aligned_with"`
	Advice      []string `json:"advice,omitempty"`
}

// EveningResult is the output of the evening analysis.
type EveningResult struct {
	Summary        string   `json:"summary"`
	Mood           string   `json:"mood,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	LinkedProjects []string `json:"linked_projects,omitempty"`
	Advice         []string `json:"advice,omitempty"`
	TomorrowTasks  []string `json:"tomorrow_tasks,omitempty"`
	WeeklyReview   string   `json:"weekly_review,omitempty"`
	WeeklyPlan     []string `json:"weekly_plan,omitempty"`
}
