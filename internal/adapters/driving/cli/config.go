package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit ~/.daylog/config.toml.

Keys use dot notation, e.g. vault.root, analysis.provider, llm.api_key.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value",
	Long: `Store a value under a dot-notation key.

Lists are comma-separated:
  daylog config set trends.windows 7,30
  daylog config set goals.active "Run a marathon,Ship daylog"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the values stored in the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the vault and the analysis backend",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cfg := settingsService.Config()

	cmd.Printf("Config file: %s\n\n", settingsService.Path())
	cmd.Println("Vault:")
	cmd.Printf("  root:           %s\n", cfg.Vault.Root)
	cmd.Printf("  daily dir:      %s\n", cfg.Vault.DailyDir)
	cmd.Printf("  weekly dir:     %s\n", cfg.Vault.WeeklyDir)
	cmd.Printf("  backups:        %s\n", cfg.Vault.BackupDir)
	cmd.Printf("  template:       %s\n", orNone(cfg.Vault.DailyTemplate))
	cmd.Printf("  git history:    %t\n", cfg.Vault.GitHistory)
	cmd.Println()
	cmd.Printf("Data dir:         %s\n", cfg.DataDir)
	if cfg.Archive.Bucket != "" {
		cmd.Printf("Archive:          s3://%s/%s\n", cfg.Archive.Endpoint, cfg.Archive.Bucket)
	} else {
		cmd.Printf("Archive:          %s\n", cfg.Archive.Dir)
	}
	cmd.Println()
	cmd.Println("Analysis:")
	cmd.Printf("  provider:       %s\n", cfg.Analysis.Provider)
	cmd.Printf("  timeout:        %s\n", cfg.Analysis.Timeout)
	if cfg.Analysis.Provider == domain.AnalysisLLM {
		cmd.Printf("  llm:            %s %s\n", cfg.LLM.Provider, cfg.LLM.Model)
		cmd.Printf("  api key:        %s\n", maskKey(cfg.LLM.APIKey))
		cmd.Printf("  requests/min:   %d\n", cfg.Analysis.RequestsPerMinute)
	}
	cmd.Printf("Trend windows:    %v\n", cfg.Trends.Windows)
	if len(cfg.Goals.Active) > 0 {
		cmd.Printf("Active goals:     %s\n", strings.Join(cfg.Goals.Active, ", "))
	}
	if cfg.Lock.RedisURL != "" {
		cmd.Printf("Lock:             redis (%s)\n", cfg.Lock.TTL)
	} else {
		cmd.Println("Lock:             local")
	}
	cmd.Printf("Server:           %s\n", cfg.Server.Addr)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	v, ok := settingsService.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s is not set", domain.ErrNotFound, args[0])
	}
	cmd.Printf("%v\n", v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return err
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	keys := settingsService.Keys()
	if len(keys) == 0 {
		cmd.Printf("%s holds no values; defaults apply.\n", settingsService.Path())
		return nil
	}
	for _, key := range keys {
		v, _ := settingsService.Get(key)
		if isSecretKey(key) {
			s, _ := v.(string)
			v = maskKey(s)
		}
		cmd.Printf("%s = %v\n", key, v)
	}
	return nil
}

// isSecretKey matches the keys whose values are never printed in full.
func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "secret_key") || strings.HasSuffix(key, ".token")
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cfg := settingsService.Config()
	failed := false

	// 1. Vault root
	if info, err := os.Stat(cfg.Vault.Root); err != nil || !info.IsDir() {
		cmd.Printf("✗ vault root %s is not a directory\n", cfg.Vault.Root)
		failed = true
	} else {
		cmd.Printf("✓ vault root %s\n", cfg.Vault.Root)
	}

	// 2. Analysis backend
	switch {
	case cfg.Analysis.Provider != domain.AnalysisLLM:
		cmd.Println("✓ analysis: rules")
	case checkLLM == nil:
		cmd.Println("- analysis: llm (not checked)")
	default:
		if err := checkLLM(cmd.Context(), cfg.LLM); err != nil {
			cmd.Printf("✗ analysis: %v\n", err)
			failed = true
		} else {
			cmd.Printf("✓ analysis: %s %s\n", cfg.LLM.Provider, cfg.LLM.Model)
		}
	}

	if failed {
		return errors.New("configuration check failed")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// maskKey shows only the last four characters of a secret.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
