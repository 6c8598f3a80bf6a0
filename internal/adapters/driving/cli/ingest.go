package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

var (
	ingestDeviceID  string
	ingestDate      string
	ingestUpdateDoc bool
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <source> [file]",
	Short: "Ingest a raw telemetry payload",
	Long: `Ingest a raw JSON payload and merge it into the state of its date.

Sources: vision, wearable, mobile, checkin, journal.
The payload is read from file, or from stdin when file is omitted or "-".
Mobile uploads resolve their date from localDate or the reporting window.

Examples:
  daylog ingest wearable garmin.json --date 2026-02-10
  cat upload.json | daylog ingest mobile`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDeviceID, "device", "", "device identity of the payload")
	ingestCmd.Flags().StringVarP(&ingestDate, "date", "d", "", "date the payload reports on (YYYY-MM-DD, default today)")
	ingestCmd.Flags().BoolVar(&ingestUpdateDoc, "update-document", true, "rewrite the Device Data block of the day")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	source := domain.SourceKind(args[0])
	body, err := readPayload(cmd, args[1:])
	if err != nil {
		return err
	}

	updateDoc := ingestUpdateDoc
	if !cmd.Flags().Changed("update-document") && settingsService != nil {
		updateDoc = settingsService.Config().UpdateDocumentOnIngest
	}

	var result *domain.IngestResult
	if source == domain.SourceMobile && ingestDate == "" {
		result, err = ingestService.IngestMobile(cmd.Context(), body, updateDoc)
	} else {
		result, err = ingestService.Ingest(cmd.Context(), domain.IngestRequest{
			Source:         source,
			DeviceID:       ingestDeviceID,
			Date:           ingestDate,
			Body:           body,
			UpdateDocument: updateDoc,
		})
	}
	if err != nil {
		return err
	}

	if ingestJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	cmd.Printf("Ingested %s payload for %s (entry %s)\n", result.Source, result.Date, result.EntryID)
	if result.Corrected {
		cmd.Println("  replaced the earlier payload of this source")
	}
	if result.DocumentPath != "" {
		cmd.Printf("  updated %s\n", result.DocumentPath)
	}
	return nil
}

// readPayload reads the file named by args, or stdin.
func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}
