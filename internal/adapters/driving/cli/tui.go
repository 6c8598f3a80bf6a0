package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/core/domain"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse days, trends and the pending micro-action",
	Long: `Open the terminal UI. It shows the telemetry of a day with its
pending micro-action, and the rolling trend windows ending on that day.
Press ? inside for the keys.`,
	Example: `  daylog tui
  daylog tui --date 2026-02-10 --open trends`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var (
	tuiDate string
	tuiOpen string
)

func init() {
	tuiCmd.Flags().StringVar(&tuiDate, "date", "", "day to show (YYYY-MM-DD, default today)")
	tuiCmd.Flags().StringVar(&tuiOpen, "open", string(messages.ViewMenu), "screen to start on: menu, today or trends")
	rootCmd.AddCommand(tuiCmd)
}

func tuiStart() (messages.ViewType, string, error) {
	view := messages.ViewType(tuiOpen)
	switch view {
	case messages.ViewMenu, messages.ViewToday, messages.ViewTrends:
	default:
		return "", "", fmt.Errorf("%w: unknown screen %q", domain.ErrInvalidInput, tuiOpen)
	}
	if tuiDate == "" {
		return view, "", nil
	}
	if _, err := domain.ParseDate(tuiDate); err != nil {
		return "", "", err
	}
	return view, tuiDate, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if flowService == nil || stateService == nil {
		return errors.New("tui services not configured")
	}
	view, date, err := tuiStart()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(flowService, stateService))
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Open(view, date).Run()
}
