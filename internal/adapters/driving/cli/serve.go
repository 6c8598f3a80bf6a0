package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/daylog/internal/logger"
)

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Addr           string
	Token          string
	UpdateDocument bool

	// WatchPrompts reloads the prompt templates while the server runs.
	// It blocks until its context is cancelled.
	WatchPrompts func(ctx context.Context) error
}

var serveConfig *ServeConfig

// SetServeConfig sets the configuration for the serve command.
func SetServeConfig(config *ServeConfig) {
	serveConfig = config
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve the ingestion endpoints and the daily flows over HTTP.

Routes:
  POST /ingest                 mobile upload (?update_document=false to skip the document)
  POST /ingest/:source         raw payload (?date=&device=)
  POST /flows/alignment|morning|evening
  POST /flows/retry            replay a kept result
  POST /actions | /records | /focus
  GET  /state/:date            POST /state/:date/rebuild
  GET  /trends/:date
  GET  /healthz

When server.token is set, requests need "Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveConfig == nil {
		return errors.New("serve command not configured")
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	if addr == "" {
		addr = serveConfig.Addr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingest: ingestService,
		Flows:  flowService,
		State:  stateService,
	}, httpapi.Options{
		Token:          serveConfig.Token,
		UpdateDocument: serveConfig.UpdateDocument,
	})
	if err != nil {
		return err
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if serveConfig.WatchPrompts != nil {
		go func() {
			if err := serveConfig.WatchPrompts(ctx); err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	cmd.Printf("daylog listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}
