// Package services implements the driving port interfaces.
//
// StateService owns the per-date DailyState: it merges normalised payloads
// under the state lock and computes trend windows. DocumentService renders
// flow results into vault sections. IngestService and FlowService build on
// both; SettingsService resolves configuration with defaults applied.
//
// Services depend only on domain types and driven ports.
package services
