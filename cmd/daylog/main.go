// Command daylog merges daily telemetry into a Markdown vault.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/daylog/internal/adapters/driven/ai"
	"github.com/custodia-labs/daylog/internal/adapters/driven/archive"
	"github.com/custodia-labs/daylog/internal/adapters/driven/config/file"
	"github.com/custodia-labs/daylog/internal/adapters/driven/goals"
	"github.com/custodia-labs/daylog/internal/adapters/driven/lock/local"
	"github.com/custodia-labs/daylog/internal/adapters/driven/lock/redis"
	"github.com/custodia-labs/daylog/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/daylog/internal/adapters/driven/vault"
	"github.com/custodia-labs/daylog/internal/adapters/driving/cli"
	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/core/services"
	"github.com/custodia-labs/daylog/internal/logger"
	"github.com/custodia-labs/daylog/internal/normalisers"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore(getEnv("DAYLOG_HOME", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open config: %v\n", err)
		return cli.ExitFailure
	}
	settings := services.NewSettingsService(configStore)
	cfg := settings.Config()

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open state store: %v\n", err)
		return cli.ExitFailure
	}
	defer store.Close()

	docs, err := vault.New(cfg.Vault.Root, cfg.Vault.BackupDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open vault: %v\n", err)
		return cli.ExitFailure
	}

	var history driven.DocumentHistory
	if cfg.Vault.GitHistory {
		h, err := vault.OpenHistory(cfg.Vault.Root)
		if err != nil {
			logger.Warn("Vault history disabled: %v", err)
		} else {
			history = h
		}
	}

	rawArchive, err := openArchive(ctx, cfg.Archive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open archive: %v\n", err)
		return cli.ExitFailure
	}

	locker, closeLocker, err := openLocker(cfg.Lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connect lock backend: %v\n", err)
		return cli.ExitFailure
	}
	defer closeLocker()

	prompts, err := file.NewPromptStore(filepath.Join(filepath.Dir(configStore.Path()), "prompts"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open prompts: %v\n", err)
		return cli.ExitFailure
	}

	analysis := ai.NewAnalyzer(ctx, cfg, ai.Deps{Prompts: prompts, Archive: rawArchive})
	defer analysis.Close()
	for _, w := range analysis.Warnings {
		logger.Debug("analysis: %s", w)
	}

	registry := normalisers.NewDefaultRegistry()
	goalLoader := goals.NewLoader(cfg.Vault.Root, goals.Dirs{
		Values:   cfg.Goals.ValuesDir,
		Goals:    cfg.Goals.GoalsDir,
		Projects: cfg.Goals.ProjectsDir,
	})

	stateService := services.NewStateService(store.StateStore(), registry, locker, cfg.Trends.Windows)
	documentService := services.NewDocumentService(docs, locker, history, cfg.Vault)
	ingestService := services.NewIngestService(stateService, registry, rawArchive, documentService)
	flowService := services.NewFlowService(
		stateService,
		store.RecordStore(),
		documentService,
		analysis.Analyzer,
		goalLoader,
		services.FlowConfig{
			AnalysisTimeout: cfg.Analysis.Timeout,
			ActiveGoals:     cfg.Goals.Active,
		},
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Flows:      flowService,
		Ingest:     ingestService,
		State:      stateService,
		Settings:   settings,
		PendingDir: filepath.Join(cfg.DataDir, "pending"),
		CheckLLM:   ai.ValidateLLMConfig,
	})
	cli.SetServeConfig(&cli.ServeConfig{
		Addr:           cfg.Server.Addr,
		Token:          cfg.Server.Token,
		UpdateDocument: cfg.UpdateDocumentOnIngest,
		WatchPrompts: func(ctx context.Context) error {
			return prompts.Watch(ctx)
		},
	})

	return cli.Execute(ctx)
}

// openArchive selects the bucket archive when one is configured.
func openArchive(ctx context.Context, cfg domain.ArchiveConfig) (driven.RawArchive, error) {
	if cfg.Bucket == "" {
		return archive.NewFSArchive(cfg.Dir)
	}
	return archive.NewS3Archive(ctx, archive.S3Config{
		Endpoint:  cfg.Endpoint,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
	})
}

// openLocker returns the Redis locker when a URL is configured, else an
// in-process one.
func openLocker(cfg domain.LockConfig) (driven.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return local.New(), func() {}, nil
	}
	l, err := redis.NewLocker(cfg.RedisURL, cfg.TTL)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Close() }, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
