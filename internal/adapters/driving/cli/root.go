// Package cli provides the cobra command tree of the daylog binary.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitClientError = 2
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose  bool
	logLevel string
)

// Services used by the commands. They are wired by main via SetServices
// and swapped for fakes in tests.
var (
	flowService     driving.FlowService
	ingestService   driving.IngestService
	stateService    driving.StateService
	settingsService driving.SettingsService
)

// pendingDir receives the computed result of a flow whose write failed.
var pendingDir string

var checkLLM func(ctx context.Context, cfg domain.LLMConfig) error

// Services groups the driving ports the commands call.
type Services struct {
	Flows    driving.FlowService
	Ingest   driving.IngestService
	State    driving.StateService
	Settings driving.SettingsService

	// PendingDir is where unwritten flow results are saved for retry.
	PendingDir string

	// CheckLLM pings the configured language model for 'config check'.
	CheckLLM func(ctx context.Context, cfg domain.LLMConfig) error
}

// SetServices wires the driving ports into the command tree.
func SetServices(s Services) {
	flowService = s.Flows
	ingestService = s.Ingest
	stateService = s.State
	settingsService = s.Settings
	pendingDir = s.PendingDir
	checkLLM = s.CheckLLM
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "daylog",
	Short: "Daily telemetry journal",
	Long: `daylog merges phone, wearable and journal telemetry into one record
per day and writes the daily flows (alignment, morning, evening) into
a Markdown vault.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if verbose {
			logger.SetVerbose(true)
			return nil
		}
		if logLevel == "" {
			return nil
		}
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "lowest level logged to stderr: debug, info, warn, error")
}

// Execute runs the command tree and returns the process exit code.
// Client errors exit with ExitClientError.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	reportError(rootCmd.ErrOrStderr(), err)
	if domain.IsClientError(err) {
		return ExitClientError
	}
	return ExitFailure
}

// reportError prints err as "Error: <flow> <date>: <reason>". A failed
// write keeps its computed result on disk so it can be retried.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", describeError(err))

	var persistErr *domain.PersistenceError
	if !errors.As(err, &persistErr) || persistErr.Pending == nil {
		return
	}
	path, saveErr := savePending(persistErr.Pending)
	if saveErr != nil {
		logger.Warn("could not save pending result: %v", saveErr)
		return
	}
	fmt.Fprintf(w, "The result was kept. Run 'daylog retry %s' to write it again.\n", path)
}

func describeError(err error) string {
	var (
		validationErr *domain.ValidationError
		analysisErr   *domain.AnalysisError
		persistErr    *domain.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("%s %s: %s", validationErr.Flow, validationErr.Date, validationErr.Message)
	case errors.As(err, &analysisErr):
		return fmt.Sprintf("%s %s: analysis failed: %v", analysisErr.Flow, analysisErr.Date, analysisErr.Err)
	case errors.As(err, &persistErr):
		return fmt.Sprintf("%s %s: write %s: %v", persistErr.Flow, persistErr.Date, persistErr.Target, persistErr.Err)
	default:
		return err.Error()
	}
}

func savePending(result *domain.FlowResult) (string, error) {
	dir := pendingDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create pending dir: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal pending result: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", result.Flow, result.Date))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write pending result: %w", err)
	}
	return path, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
