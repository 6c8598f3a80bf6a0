package domain

import "time"

// AnalysisProvider selects the analysis backend.
type AnalysisProvider string

// Analysis providers.
const (
	// AnalysisRules is the deterministic threshold-based analyzer.
	AnalysisRules AnalysisProvider = "rules"

	// AnalysisLLM sends the analysis context to a language model.
	AnalysisLLM AnalysisProvider = "llm"
)

// IsValid returns true if the provider is recognised.
func (p AnalysisProvider) IsValid() bool {
	return p == AnalysisRules || p == AnalysisLLM
}

// LLMProvider identifies a language model backend.
type LLMProvider string

// LLM providers.
const (
	LLMOpenAI    LLMProvider = "openai"
	LLMAnthropic LLMProvider = "anthropic"
	LLMOllama    LLMProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMOpenAI, LLMAnthropic, LLMOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p LLMProvider) RequiresAPIKey() bool {
	return p == LLMOpenAI || p == LLMAnthropic
}

// Config is the resolved application configuration.
type Config struct {
	Vault    VaultConfig
	DataDir  string
	Archive  ArchiveConfig
	Analysis AnalysisConfig
	LLM      LLMConfig
	Trends   TrendConfig
	Goals    GoalsConfig
	Lock     LockConfig
	Server   ServerConfig

	// UpdateDocumentOnIngest rewrites the Device Data block on every ingestion.
	UpdateDocumentOnIngest bool
}

// VaultConfig locates the document directory.
type VaultConfig struct {
	Root          string
	DailyDir      string
	WeeklyDir     string
	BackupDir     string
	DailyTemplate string
	GitHistory    bool
}

// ArchiveConfig selects where raw payloads are archived.
// The S3 fields are used when Bucket is set.
type ArchiveConfig struct {
	Dir       string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// AnalysisConfig configures the analysis step of the flows.
type AnalysisConfig struct {
	Provider          AnalysisProvider
	Timeout           time.Duration
	RequestsPerMinute int
	Thresholds        AdviceThresholds
}

// AdviceThresholds drive the rules analyzer.
type AdviceThresholds struct {
	SleepLowMinutes    int
	SleepMediumMinutes int
	StressHigh         int
	ScreenHighMinutes  int
	HRVLowMs           int
	SleepDropMinutes   int
	ScreenRiseMinutes  int
}

// DefaultAdviceThresholds returns the built-in thresholds.
func DefaultAdviceThresholds() AdviceThresholds {
	return AdviceThresholds{
		SleepLowMinutes:    360,
		SleepMediumMinutes: 420,
		StressHigh:         60,
		ScreenHighMinutes:  240,
		HRVLowMs:           30,
		SleepDropMinutes:   30,
		ScreenRiseMinutes:  30,
	}
}

// LLMConfig configures the language model backend.
type LLMConfig struct {
	Provider LLMProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// TrendConfig lists the trend window sizes in days.
type TrendConfig struct {
	Windows []int
}

// GoalsConfig locates the goal graph notes.
type GoalsConfig struct {
	ValuesDir   string
	GoalsDir    string
	ProjectsDir string
	Active      []string
}

// LockConfig selects the lock backend. Empty RedisURL means in-process locks.
type LockConfig struct {
	RedisURL string
	TTL      time.Duration
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr  string
	Token string
}
