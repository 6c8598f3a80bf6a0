// Package driven declares what the core needs from the outside world.
//
// Services are written against these interfaces and never against an
// adapter. Wiring happens in cmd/daylog.
//
// # Always wired
//
//   - StateStore and RecordStore: the SQLite database
//   - DocumentStore: the Markdown vault
//   - Locker: per-date critical sections (in-process or Redis)
//   - NormaliserRegistry: one Normaliser per source kind
//   - Analyzer: rules, or a language model with rules as fallback
//   - ConfigStore: ~/.daylog/config.toml
//
// # May be nil
//
//   - RawArchive: copies of ingested payloads and analysis transcripts
//   - DocumentHistory: git commits of vault writes
//   - GoalSource: value, goal and project notes
//   - LLMService and PromptStore: only used by the LLM analyzer
//
// Ports import domain and nothing else from internal/.
package driven
