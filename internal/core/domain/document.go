package domain

import (
	"fmt"
	"path"
	"time"
)

// Section headings shared with the host document application.
// The heading text is the contract: renaming one breaks the host's renderers.
const (
	HeadingStatus     = "Status"
	HeadingDeviceData = "Device Data"

	HeadingMicroAction = "Today's Micro-Action"
	HeadingTasks       = "Today's Tasks"

	HeadingEveningSummary = "Evening Summary"
	HeadingEveningAdvice  = "Evening Advice"

	HeadingAlignment  = "Alignment"
	HeadingMetrics    = "Metrics"
	HeadingSnapshot   = "Snapshot"
	HeadingValueBoard = "Value Board"
	HeadingPattern    = "Pattern"
	HeadingFocus      = "Focus"

	HeadingJournal        = "Journal"
	HeadingMorningCheckin = "Morning Check-in"
	HeadingRecord         = "Record"
	HeadingPracticeReview = "Practice Review"

	HeadingWeeklyReview = "Weekly Review"
	HeadingNextWeekPlan = "Next Week Plan"
)

// DailyDocumentPath returns the vault-relative path of a day's document.
func DailyDocumentPath(dailyDir, date string) string {
	return path.Join(dailyDir, date+".md")
}

// WeeklyDocumentPath returns the vault-relative path of the ISO week
// document containing t.
func WeeklyDocumentPath(weeklyDir string, t time.Time) string {
	return path.Join(weeklyDir, ISOWeekID(t)+".md")
}

// DefaultDailyHeader is the content of a freshly created daily document.
func DefaultDailyHeader(date string) string {
	return fmt.Sprintf("---\njournal: day\njournal-date: %s\n---\n\n# %s\n", date, date)
}

// DefaultWeeklyHeader is the content of a freshly created weekly document.
func DefaultWeeklyHeader(weekID string) string {
	return fmt.Sprintf("---\njournal: week\njournal-week: %s\n---\n\n# %s\n", weekID, weekID)
}
