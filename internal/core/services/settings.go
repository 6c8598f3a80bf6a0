package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyVaultRoot          = "vault.root"
	keyVaultDailyDir      = "vault.daily_dir"
	keyVaultWeeklyDir     = "vault.weekly_dir"
	keyVaultBackupDir     = "vault.backup_dir"
	keyVaultDailyTemplate = "vault.daily_template"
	keyVaultGitHistory    = "vault.git_history"
	keyDataDir            = "data.dir"
	keyArchiveDir         = "archive.dir"
	keyArchiveEndpoint    = "archive.s3.endpoint"
	keyArchiveBucket      = "archive.s3.bucket"
	keyArchiveAccessKey   = "archive.s3.access_key"
	keyArchiveSecretKey   = "archive.s3.secret_key"
	keyArchiveUseSSL      = "archive.s3.use_ssl"
	keyAnalysisProvider   = "analysis.provider"
	keyAnalysisTimeout    = "analysis.timeout_seconds"
	keyAnalysisRPM        = "analysis.requests_per_minute"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyTrendWindows       = "trends.windows"
	keyGoalsValuesDir     = "goals.values_dir"
	keyGoalsGoalsDir      = "goals.goals_dir"
	keyGoalsProjectsDir   = "goals.projects_dir"
	keyGoalsActive        = "goals.active"
	keyLockRedisURL       = "lock.redis_url"
	keyLockTTL            = "lock.ttl_seconds"
	keyServerAddr         = "server.addr"
	keyServerToken        = "server.token"
	keyIngestUpdateDoc    = "ingest.update_document"
)

// Environment variables that supply the LLM API key.
const (
	envLLMAPIKey       = "DAYLOG_LLM_API_KEY"
	envOpenAIAPIKey    = "OPENAI_API_KEY"
	envAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// Defaults applied when a key is absent.
const (
	DefaultVaultRoot   = "~/Daylog"
	DefaultDailyDir    = "Diary/Day"
	DefaultWeeklyDir   = "Diary/Week"
	DefaultBackupDir   = "~/.daylog/backups"
	DefaultDataDir     = "~/.daylog/data"
	DefaultArchiveDir  = "~/.daylog/archive"
	DefaultServerAddr  = "127.0.0.1:8787"
	DefaultRPM         = 20
	DefaultLockTTL     = 2 * time.Minute
	defaultOpenAIModel = "gpt-4o-mini"
)

// SettingsService resolves the application configuration from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
	home        func() (string, error)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
		home:        os.UserHomeDir,
	}
}

// LoadConfig resolves the configuration held by store.
func LoadConfig(store driven.ConfigStore) domain.Config {
	return NewSettingsService(store).Config()
}

// Config returns the resolved configuration with defaults applied.
func (s *SettingsService) Config() domain.Config {
	cfg := domain.Config{
		Vault: domain.VaultConfig{
			Root:          s.getPath(keyVaultRoot, DefaultVaultRoot),
			DailyDir:      s.getString(keyVaultDailyDir, DefaultDailyDir),
			WeeklyDir:     s.getString(keyVaultWeeklyDir, DefaultWeeklyDir),
			BackupDir:     s.getPath(keyVaultBackupDir, DefaultBackupDir),
			DailyTemplate: s.str(keyVaultDailyTemplate),
			GitHistory:    s.getBool(keyVaultGitHistory, false),
		},
		DataDir: s.getPath(keyDataDir, DefaultDataDir),
		Archive: domain.ArchiveConfig{
			Dir:       s.getPath(keyArchiveDir, DefaultArchiveDir),
			Endpoint:  s.str(keyArchiveEndpoint),
			Bucket:    s.str(keyArchiveBucket),
			AccessKey: s.str(keyArchiveAccessKey),
			SecretKey: s.str(keyArchiveSecretKey),
			UseSSL:    s.getBool(keyArchiveUseSSL, true),
		},
		Analysis: domain.AnalysisConfig{
			Provider:          s.getAnalysisProvider(),
			Timeout:           time.Duration(s.getInt(keyAnalysisTimeout, int(DefaultAnalysisTimeout/time.Second))) * time.Second,
			RequestsPerMinute: s.getInt(keyAnalysisRPM, DefaultRPM),
			Thresholds:        domain.DefaultAdviceThresholds(),
		},
		LLM: s.llmConfig(),
		Trends: domain.TrendConfig{
			Windows: s.getWindows(),
		},
		Goals: domain.GoalsConfig{
			ValuesDir:   s.str(keyGoalsValuesDir),
			GoalsDir:    s.str(keyGoalsGoalsDir),
			ProjectsDir: s.str(keyGoalsProjectsDir),
			Active:      s.strs(keyGoalsActive),
		},
		Lock: domain.LockConfig{
			RedisURL: s.str(keyLockRedisURL),
			TTL:      time.Duration(s.getInt(keyLockTTL, int(DefaultLockTTL/time.Second))) * time.Second,
		},
		Server: domain.ServerConfig{
			Addr:  s.getString(keyServerAddr, DefaultServerAddr),
			Token: s.str(keyServerToken),
		},
		UpdateDocumentOnIngest: s.getBool(keyIngestUpdateDoc, true),
	}
	return cfg
}

// Get returns the raw value stored under key.
func (s *SettingsService) Get(key string) (any, bool) {
	return s.configStore.Lookup(key)
}

// Unset removes key so its default applies again.
func (s *SettingsService) Unset(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty config key", domain.ErrInvalidInput)
	}
	if _, ok := s.configStore.Lookup(key); !ok {
		return fmt.Errorf("%w: %s is not set", domain.ErrNotFound, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys stored in the file.
func (s *SettingsService) Keys() []string {
	return s.configStore.Keys()
}

// Set parses value for key and persists it. Booleans, integers and
// comma-separated lists are recognised by the key they belong to.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty config key", domain.ErrInvalidInput)
	}
	parsed, err := parseSetting(key, value)
	if err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func parseSetting(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case keyVaultGitHistory, keyArchiveUseSSL, keyIngestUpdateDoc:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case keyAnalysisTimeout, keyAnalysisRPM, keyLockTTL:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case keyTrendWindows:
		var windows []int
		for _, part := range splitList(value) {
			n, err := strconv.Atoi(part)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: %s must list positive day counts", domain.ErrInvalidInput, key)
			}
			windows = append(windows, n)
		}
		return windows, nil
	case keyGoalsActive:
		return splitList(value), nil
	case keyAnalysisProvider:
		if !domain.AnalysisProvider(value).IsValid() {
			return nil, fmt.Errorf("%w: %s must be rules or llm", domain.ErrInvalidInput, key)
		}
	case keyLLMProvider:
		if !domain.LLMProvider(value).IsValid() {
			return nil, fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, value)
		}
	}
	return value, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *SettingsService) llmConfig() domain.LLMConfig {
	provider := domain.LLMProvider(s.str(keyLLMProvider))
	if !provider.IsValid() {
		provider = domain.LLMOpenAI
	}
	model := s.str(keyLLMModel)
	if model == "" && provider == domain.LLMOpenAI {
		model = defaultOpenAIModel
	}

	apiKey := s.str(keyLLMAPIKey)
	if apiKey == "" {
		apiKey = s.getenv(envLLMAPIKey)
	}
	if apiKey == "" {
		switch provider {
		case domain.LLMOpenAI:
			apiKey = s.getenv(envOpenAIAPIKey)
		case domain.LLMAnthropic:
			apiKey = s.getenv(envAnthropicAPIKey)
		}
	}

	return domain.LLMConfig{
		Provider: provider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  s.str(keyLLMBaseURL),
	}
}

func (s *SettingsService) getAnalysisProvider() domain.AnalysisProvider {
	p := domain.AnalysisProvider(s.str(keyAnalysisProvider))
	if !p.IsValid() {
		return domain.AnalysisRules
	}
	return p
}

func (s *SettingsService) getWindows() []int {
	var windows []int
	for _, n := range s.ints(keyTrendWindows) {
		if n > 0 {
			windows = append(windows, n)
		}
	}
	if len(windows) == 0 {
		return append([]int(nil), DefaultTrendWindows...)
	}
	return windows
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.str(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val, ok := asInt(s.lookup(key)); ok && val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if val, ok := s.lookup(key).(bool); ok {
		return val
	}
	return defaultVal
}

// getPath returns the string at key with a leading ~ expanded.
func (s *SettingsService) getPath(key, defaultVal string) string {
	return s.expandHome(s.getString(key, defaultVal))
}

func (s *SettingsService) expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := s.home()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
