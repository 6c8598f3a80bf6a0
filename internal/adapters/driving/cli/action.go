package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

var (
	actionDate string
	actionID   string

	recordDate   string
	recordSource string

	focusDate   string
	focusIntent string
	focusWhy    string
)

var actionCmd = &cobra.Command{
	Use:   "action <accept|skip|modify> [new text]",
	Short: "Resolve the pending micro-action",
	Long: `Accept, skip or modify the micro-action proposed by the morning flow.
Modify needs the replacement text.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAction,
}

var recordCmd = &cobra.Command{
	Use:   "record <text>",
	Short: "Add a free-form record to the day",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecord,
}

var focusCmd = &cobra.Command{
	Use:   "focus [name]",
	Short: "Show or set the focus of the week",
	Long: `Write the focus into the ISO week document containing the date.
Without a name, print the saved focus and the active goals to choose from.`,
	RunE:  runFocus,
}

var retryCmd = &cobra.Command{
	Use:   "retry <file>",
	Short: "Write a kept flow result again",
	Long: `Replay the document writes of a flow result that was kept after a
failed write. Analysis is not repeated.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runRetry,
}

func init() {
	actionCmd.Flags().StringVarP(&actionDate, "date", "d", "", "date of the action (YYYY-MM-DD, default today)")
	actionCmd.Flags().StringVar(&actionID, "id", "", "id of the pending action")

	recordCmd.Flags().StringVarP(&recordDate, "date", "d", "", "date of the record (YYYY-MM-DD, default today)")
	recordCmd.Flags().StringVar(&recordSource, "source", "cli", "where the record came from")

	focusCmd.Flags().StringVarP(&focusDate, "date", "d", "", "any date of the week (YYYY-MM-DD, default today)")
	focusCmd.Flags().StringVar(&focusIntent, "intent", "", "what the focus should achieve")
	focusCmd.Flags().StringVar(&focusWhy, "why", "", "why it matters")

	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(retryCmd)
}

func runAction(cmd *cobra.Command, args []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	in := domain.ActionInput{
		Date:     actionDate,
		ActionID: actionID,
		Decision: domain.ActionDecision(strings.ToLower(args[0])),
	}
	if len(args) == 2 {
		in.Text = args[1]
	}
	action, err := flowService.ResolveAction(cmd.Context(), in)
	if err != nil {
		return err
	}
	cmd.Printf("Action %s: %s\n", action.Status, action.Text)
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	rec, err := flowService.AddRecord(cmd.Context(), domain.RecordInput{
		Date:   recordDate,
		Text:   strings.Join(args, " "),
		Source: recordSource,
	})
	if err != nil {
		return err
	}
	cmd.Printf("Recorded for %s at %s\n", rec.Date, rec.CreatedAt.Format("15:04"))
	return nil
}

func runFocus(cmd *cobra.Command, args []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	if len(args) == 0 {
		return showFocus(cmd)
	}
	result, err := flowService.SetFocus(cmd.Context(), domain.FocusInput{
		Date: focusDate,
		Focus: domain.Focus{
			Name:   strings.Join(args, " "),
			Intent: focusIntent,
			Why:    focusWhy,
		},
	})
	if err != nil {
		return err
	}
	cmd.Printf("Focus set in %s\n", strings.Join(result.Paths(), ", "))
	return nil
}

func showFocus(cmd *cobra.Command) error {
	wf, err := flowService.GetFocus(cmd.Context(), focusDate)
	if err != nil {
		return err
	}
	cmd.Printf("Week %s (%s)\n", wf.Week, wf.Path)
	if wf.Focus == nil {
		cmd.Println("No focus set")
	} else {
		cmd.Printf("Focus: %s\n", wf.Focus.Name)
		if wf.Focus.Intent != "" {
			cmd.Printf("  Intent: %s\n", wf.Focus.Intent)
		}
		if wf.Focus.Why != "" {
			cmd.Printf("  Why: %s\n", wf.Focus.Why)
		}
	}
	if len(wf.Options) > 0 {
		cmd.Println("Options:")
		for _, o := range wf.Options {
			cmd.Printf("  - %s\n", o)
		}
	}
	return nil
}

func runRetry(cmd *cobra.Command, args []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	data, err := readPayload(cmd, args)
	if err != nil {
		return err
	}
	var result domain.FlowResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("%w: kept result is not valid JSON: %w", domain.ErrInvalidInput, err)
	}
	if err := flowService.RetryWrite(cmd.Context(), &result); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", strings.Join(result.Paths(), ", "))
	return nil
}
