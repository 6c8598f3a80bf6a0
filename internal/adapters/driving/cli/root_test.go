package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/logger"
)

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"ingest", "align", "morning", "evening", "action", "record", "focus",
		"retry", "state", "trends", "config", "serve", "mcp", "tui", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")

	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCmd_LogLevelFlag(t *testing.T) {
	setupTestServices(t)
	t.Cleanup(func() { logger.SetVerbose(false) })

	_, err := runCommand(t, "--log-level", "warn", "version")
	require.NoError(t, err)
	assert.Equal(t, logger.LevelWarn, logger.CurrentLevel())

	_, err = runCommand(t, "--log-level", "loud", "version")
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}

// ==================== Execute Tests ====================

func TestExecute_OK(t *testing.T) {
	setupTestServices(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})

	code := Execute(context.Background())

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, buf.String(), "daylog version")
}

func TestExecute_ClientErrorExitCode(t *testing.T) {
	s := setupTestServices(t)
	s.Flows.EveningFunc = func(_ context.Context, in domain.EveningInput) (*domain.FlowResult, error) {
		return nil, &domain.ValidationError{Flow: domain.FlowEvening, Date: "2026-02-10", Message: "journal is empty"}
	}
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"evening", "--journal", "x", "--date", "2026-02-10"})

	code := Execute(context.Background())

	assert.Equal(t, ExitClientError, code)
	assert.Contains(t, buf.String(), "Error: evening 2026-02-10: journal is empty")
}

func TestExecute_FailureExitCode(t *testing.T) {
	s := setupTestServices(t)
	s.Flows.AlignFunc = func(context.Context, domain.AlignInput) (*domain.FlowResult, error) {
		return nil, errors.New("store closed")
	}
	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"align"})

	code := Execute(context.Background())

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, buf.String(), "Error: store closed")
}

func TestExecute_PersistenceErrorKeepsResult(t *testing.T) {
	s := setupTestServices(t)
	dir := t.TempDir()
	pendingDir = dir
	pending := &domain.FlowResult{
		Flow:      domain.FlowMorning,
		Date:      "2026-02-10",
		Documents: []domain.DocumentUpdate{{Path: "Diary/Day/2026-02-10.md"}},
	}
	s.Flows.MorningFunc = func(context.Context, domain.MorningInput) (*domain.FlowResult, error) {
		return nil, &domain.PersistenceError{
			Flow:    domain.FlowMorning,
			Date:    "2026-02-10",
			Target:  "Diary/Day/2026-02-10.md",
			Err:     errors.New("permission denied"),
			Pending: pending,
		}
	}
	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"morning"})

	code := Execute(context.Background())

	assert.Equal(t, ExitFailure, code)
	output := buf.String()
	assert.Contains(t, output, "write Diary/Day/2026-02-10.md: permission denied")
	assert.Contains(t, output, "daylog retry")

	kept := filepath.Join(dir, "morning-2026-02-10.json")
	data, err := os.ReadFile(kept)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path": "Diary/Day/2026-02-10.md"`)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "validation",
			err:      &domain.ValidationError{Flow: domain.FlowEvening, Date: "2026-02-10", Message: "journal is empty"},
			expected: "evening 2026-02-10: journal is empty",
		},
		{
			name:     "analysis",
			err:      &domain.AnalysisError{Flow: domain.FlowMorning, Date: "2026-02-10", Err: context.DeadlineExceeded},
			expected: "morning 2026-02-10: analysis failed: context deadline exceeded",
		},
		{
			name: "persistence",
			err: &domain.PersistenceError{
				Flow: domain.FlowAlignment, Date: "2026-02-10", Target: "state", Err: domain.ErrConflict,
			},
			expected: "alignment 2026-02-10: write state: concurrent update conflict",
		},
		{
			name:     "wrapped schema",
			err:      errors.Join(&domain.SchemaError{Source: domain.SourceWearable, Field: "hrv", Reason: "must be a number"}),
			expected: `schema error: wearable payload field "hrv": must be a number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describeError(tt.err))
		})
	}
}

func TestSavePending_DefaultsToTempDir(t *testing.T) {
	original := pendingDir
	pendingDir = ""
	defer func() { pendingDir = original }()

	path, err := savePending(&domain.FlowResult{Flow: domain.FlowFocus, Date: "2026-02-15"})
	require.NoError(t, err)
	defer os.Remove(path)

	assert.True(t, strings.HasPrefix(path, os.TempDir()))
	assert.Equal(t, "focus-2026-02-15.json", filepath.Base(path))
}

func TestPrintJSON(t *testing.T) {
	buf := new(bytes.Buffer)

	err := printJSON(buf, map[string]int{"a": 1})

	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
