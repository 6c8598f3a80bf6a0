// Package domain holds the daylog data model and its pure rules.
//
// A day is keyed by its YYYY-MM-DD date. Everything known about it lives
// in one DailyState: the raw payload each source sent, kept verbatim, and
// the Normalized cache merged from them. The rest of the package is
// derived from states:
//
//   - TrendWindow averages the last N states and compares them with the
//     N before.
//   - FlowResult carries the sections a flow wants written, plus the
//     state changes it made.
//   - The typed errors (SchemaError, ValidationError, AnalysisError,
//     PersistenceError) tell callers which stage failed and whether the
//     input or the system was at fault.
//
// Only the standard library is imported here. Services, ports and
// adapters import domain; domain imports none of them.
package domain
