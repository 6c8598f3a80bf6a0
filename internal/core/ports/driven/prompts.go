package driven

// PromptStore provides access to analysis prompt templates.
// Templates use {{name}} placeholders that the analyzer substitutes.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations fall back to an embedded default when the
	// user copy is missing or unreadable.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names, one per analysed flow.
const (
	// PromptAlignment produces the value board and weekly focus.
	// Placeholders: {{date}}, {{metrics}}, {{trends}}, {{goals}}, {{active_goals}}, {{records}}.
	PromptAlignment = "alignment"

	// PromptMorning produces the micro-action of the day.
	// Placeholders: {{date}}, {{metrics}}, {{trends}}, {{goals}}, {{active_goals}}, {{text}}.
	PromptMorning = "morning"

	// PromptEvening produces the evening summary and advice.
	// Placeholders: {{date}}, {{metrics}}, {{trends}}, {{goals}}, {{text}}, {{records}}, {{week_end}}.
	PromptEvening = "evening"

	// PromptSystem is the shared system prompt. It has no placeholders.
	PromptSystem = "system"
)
