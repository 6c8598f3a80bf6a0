package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

var (
	flowDate string
	flowJSON bool

	morningText string

	eveningJournal     string
	eveningMood        string
	eveningEnergyDrain string
	eveningAchievement string
	eveningFollowUp    string
	eveningReflection  string
)

// stdinIsTerminal reports whether the journal should be prompted for.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Run the alignment flow",
	Long: `Write the metrics snapshot, value board, pattern and focus of the day
under the Alignment section of the daily document.`,
	Args: cobra.NoArgs,
	RunE: runAlign,
}

var morningCmd = &cobra.Command{
	Use:   "morning",
	Short: "Run the morning flow",
	Long: `Propose one micro-action for the day and hold it as pending until it
is accepted, skipped or modified with 'daylog action'.`,
	Args: cobra.NoArgs,
	RunE: runMorning,
}

var eveningCmd = &cobra.Command{
	Use:   "evening",
	Short: "Run the evening flow",
	Long: `Summarise the day from the journal, the records and the telemetry.

The journal is taken from --journal, from piped stdin, or prompted for
when stdin is a terminal (finish with an empty line).`,
	Args: cobra.NoArgs,
	RunE: runEvening,
}

func init() {
	for _, c := range []*cobra.Command{alignCmd, morningCmd, eveningCmd} {
		c.Flags().StringVarP(&flowDate, "date", "d", "", "date of the flow (YYYY-MM-DD, default today)")
		c.Flags().BoolVar(&flowJSON, "json", false, "print the result as JSON")
	}
	morningCmd.Flags().StringVarP(&morningText, "text", "t", "", "morning check-in text")

	eveningCmd.Flags().StringVarP(&eveningJournal, "journal", "j", "", "journal text")
	eveningCmd.Flags().StringVar(&eveningMood, "mood", "", "mood of the day")
	eveningCmd.Flags().StringVar(&eveningEnergyDrain, "energy-drain", "", "what drained energy")
	eveningCmd.Flags().StringVar(&eveningAchievement, "achievement", "", "achievement of the day")
	eveningCmd.Flags().StringVar(&eveningFollowUp, "follow-up", "", "what to follow up on")
	eveningCmd.Flags().StringVar(&eveningReflection, "reflection", "", "reflection")

	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(morningCmd)
	rootCmd.AddCommand(eveningCmd)
}

func runAlign(cmd *cobra.Command, _ []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	result, err := flowService.Align(cmd.Context(), domain.AlignInput{Date: flowDate})
	if err != nil {
		return err
	}
	return printFlowResult(cmd, result)
}

func runMorning(cmd *cobra.Command, _ []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	result, err := flowService.Morning(cmd.Context(), domain.MorningInput{Date: flowDate, Text: morningText})
	if err != nil {
		return err
	}
	if err := printFlowResult(cmd, result); err != nil {
		return err
	}
	if !flowJSON && result.PendingAction != nil {
		cmd.Printf("\nPending action %s. Resolve it with:\n  daylog action accept|skip|modify --date %s\n",
			result.PendingAction.ID, result.Date)
	}
	return nil
}

func runEvening(cmd *cobra.Command, _ []string) error {
	if flowService == nil {
		return errors.New("flow service not configured")
	}
	journal := eveningJournal
	if strings.TrimSpace(journal) == "" {
		var err error
		journal, err = readJournal(cmd)
		if err != nil {
			return err
		}
	}
	result, err := flowService.Evening(cmd.Context(), domain.EveningInput{
		Date:        flowDate,
		Journal:     journal,
		Mood:        eveningMood,
		EnergyDrain: eveningEnergyDrain,
		Achievement: eveningAchievement,
		FollowUp:    eveningFollowUp,
		Reflection:  eveningReflection,
	})
	if err != nil {
		return err
	}
	return printFlowResult(cmd, result)
}

// readJournal reads piped stdin whole, or prompts line by line on a
// terminal until an empty line.
func readJournal(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if !stdinIsTerminal() {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read journal: %w", err)
		}
		return string(data), nil
	}

	cmd.Println("Journal (finish with an empty line):")
	var lines []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read journal: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

// printFlowResult prints the rendered sections of a flow run.
func printFlowResult(cmd *cobra.Command, result *domain.FlowResult) error {
	if flowJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}

	cmd.Printf("%s %s\n", result.Flow, result.Date)
	sections := result.Sections()
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("\n[%s]\n%s\n", k, sections[k])
	}
	if len(result.Documents) > 0 {
		cmd.Printf("\nWrote %s\n", strings.Join(result.Paths(), ", "))
	}
	return nil
}
