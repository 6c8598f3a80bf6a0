package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

var stateJSON bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the daily state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the state of a date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStateShow,
}

var stateRebuildCmd = &cobra.Command{
	Use:   "rebuild [date]",
	Short: "Recompute the normalized fields from the stored raw payloads",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStateRebuild,
}

var trendsCmd = &cobra.Command{
	Use:   "trends [date]",
	Short: "Show the trend windows ending at a date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTrends,
}

func init() {
	stateShowCmd.Flags().BoolVar(&stateJSON, "json", false, "print the state as JSON")
	stateRebuildCmd.Flags().BoolVar(&stateJSON, "json", false, "print the state as JSON")
	trendsCmd.Flags().BoolVar(&stateJSON, "json", false, "print the windows as JSON")

	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateRebuildCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(trendsCmd)
}

func dateArg(args []string) string {
	if len(args) == 0 {
		return domain.Today()
	}
	return args[0]
}

func runStateShow(cmd *cobra.Command, args []string) error {
	if stateService == nil {
		return errors.New("state service not configured")
	}
	st, err := stateService.Get(cmd.Context(), dateArg(args))
	if err != nil {
		return err
	}
	return printState(cmd, st)
}

func runStateRebuild(cmd *cobra.Command, args []string) error {
	if stateService == nil {
		return errors.New("state service not configured")
	}
	st, err := stateService.Rebuild(cmd.Context(), dateArg(args))
	if err != nil {
		return err
	}
	return printState(cmd, st)
}

func printState(cmd *cobra.Command, st *domain.DailyState) error {
	if stateJSON {
		return printJSON(cmd.OutOrStdout(), st)
	}

	cmd.Printf("State %s\n", st.Date)
	if st.IsNew() {
		cmd.Println("  nothing ingested yet")
		return nil
	}
	cmd.Println("\nSources:")
	for _, kind := range []domain.SourceKind{
		domain.SourceVision, domain.SourceWearable, domain.SourceMobile,
		domain.SourceCheckin, domain.SourceJournal,
	} {
		if entry, ok := st.Raw[kind]; ok {
			cmd.Printf("  %-9s %s\n", kind, entry.IngestedAt.Format("2006-01-02 15:04"))
		}
	}
	cmd.Println("\nMetrics:")
	for _, m := range domain.AllMetrics {
		if v, ok := st.Normalized.Value(m); ok {
			cmd.Printf("  %-22s %s\n", m, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	if st.Normalized.SleepEfficiency != nil {
		cmd.Printf("  %-22s %.2f\n", "sleep_efficiency", *st.Normalized.SleepEfficiency)
	}
	if pa := st.PendingAction; pa != nil {
		cmd.Printf("\nAction (%s): %s\n", pa.Status, pa.Text)
	}
	return nil
}

func runTrends(cmd *cobra.Command, args []string) error {
	if stateService == nil {
		return errors.New("state service not configured")
	}
	windows, err := stateService.Trends(cmd.Context(), dateArg(args))
	if err != nil {
		return err
	}
	if stateJSON {
		return printJSON(cmd.OutOrStdout(), windows)
	}
	for _, w := range windows {
		cmd.Printf("%d days to %s (%d records)\n", w.Days, w.EndDate, w.Records)
		for _, m := range domain.AllMetrics {
			f, ok := w.Field(m)
			if !ok {
				continue
			}
			cmd.Printf("  %-22s %s\n", m, formatTrend(f))
		}
	}
	return nil
}

func formatTrend(f domain.FieldTrend) string {
	s := fmt.Sprintf("avg %s over %d days", strconv.FormatFloat(f.Avg, 'f', 1, 64), f.Count)
	if f.Delta != nil {
		s += fmt.Sprintf(", delta %+.1f", *f.Delta)
	}
	return s + ", " + string(f.Direction)
}
