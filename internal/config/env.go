package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., SCRAPER_WAIT_TIMEOUT_SECONDS).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 10000)
	Port int `envconfig:"PORT" default:"10000"`

	// DatabaseURL is the database connection URL.
	// Env: DATABASE_URL (required)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// TriggerSecret guards POST /run-analysis.
	// Env: TRIGGER_SECRET
	TriggerSecret string `envconfig:"TRIGGER_SECRET"`

	// MinBriefLength is the exclusive lower bound on brief length.
	// Env: MIN_BRIEF_LENGTH (default: 180)
	MinBriefLength int `envconfig:"MIN_BRIEF_LENGTH" default:"180"`

	// MaxBriefLength is the inclusive upper bound on brief length, 0 disables it.
	// Env: MAX_BRIEF_LENGTH (default: 0)
	MaxBriefLength int `envconfig:"MAX_BRIEF_LENGTH" default:"0"`

	// MaxBriefAgeSeconds drops briefs published longer ago than this, 0 disables it.
	// Env: MAX_BRIEF_AGE_SECONDS (default: 0)
	MaxBriefAgeSeconds float64 `envconfig:"MAX_BRIEF_AGE_SECONDS" default:"0"`

	// MaxEntries is the retention bound on stored briefs.
	// Env: MAX_ENTRIES (default: 300)
	MaxEntries int `envconfig:"MAX_ENTRIES" default:"300"`

	// AnnotationBatchSize is the number of rows per annotation pass.
	// Env: ANNOTATION_BATCH_SIZE (default: 5)
	AnnotationBatchSize int `envconfig:"ANNOTATION_BATCH_SIZE" default:"5"`

	// Annotate configures how serve drives the annotator.
	Annotate AnnotateEnv `envconfig:"ANNOTATE"`

	// ScrapeIntervalSeconds enables in-process periodic scraping when positive.
	// Env: SCRAPE_INTERVAL_SECONDS (default: 0)
	ScrapeIntervalSeconds float64 `envconfig:"SCRAPE_INTERVAL_SECONDS" default:"0"`

	// Scraper configures the headless browser fetcher.
	Scraper ScraperEnv `envconfig:"SCRAPER"`

	// Model configures the NLP model directories.
	Model ModelEnv `envconfig:"MODEL"`

	// Notify configures new-brief notifications.
	Notify NotifyEnv `envconfig:"NOTIFY"`
}

// AnnotateEnv holds environment configuration for the annotator trigger.
type AnnotateEnv struct {
	// Mode is trigger, poll or listen.
	// Env: ANNOTATE_MODE (default: trigger)
	Mode string `envconfig:"MODE" default:"trigger"`

	// PollIntervalSeconds is the poll mode period.
	// Env: ANNOTATE_POLL_INTERVAL_SECONDS (default: 300)
	PollIntervalSeconds float64 `envconfig:"POLL_INTERVAL_SECONDS" default:"300"`
}

// ScraperEnv holds environment configuration for the fetcher.
type ScraperEnv struct {
	// URL is the page to scrape.
	// Env: SCRAPER_URL (default: https://newsfilter.io)
	URL string `envconfig:"URL" default:"https://newsfilter.io"`

	// Sections is a comma-separated list of page sections.
	// Env: SCRAPER_SECTIONS (default: Briefs,Press Releases)
	Sections string `envconfig:"SECTIONS" default:"Briefs,Press Releases"`

	// UserAgent overrides the browser user agent.
	// Env: SCRAPER_USER_AGENT
	UserAgent string `envconfig:"USER_AGENT"`

	// NavigationTimeoutSeconds bounds page navigation.
	// Env: SCRAPER_NAVIGATION_TIMEOUT_SECONDS (default: 60)
	NavigationTimeoutSeconds float64 `envconfig:"NAVIGATION_TIMEOUT_SECONDS" default:"60"`

	// WaitTimeoutSeconds bounds each selector wait.
	// Env: SCRAPER_WAIT_TIMEOUT_SECONDS (default: 30)
	WaitTimeoutSeconds float64 `envconfig:"WAIT_TIMEOUT_SECONDS" default:"30"`

	// ScreenshotPath is written when a wait times out.
	// Env: SCRAPER_SCREENSHOT_PATH (default: error_timeout_final.png)
	ScreenshotPath string `envconfig:"SCREENSHOT_PATH" default:"error_timeout_final.png"`

	// ExecutablePath overrides the browser binary.
	// Env: SCRAPER_EXECUTABLE_PATH
	ExecutablePath string `envconfig:"EXECUTABLE_PATH"`
}

// ModelEnv holds environment configuration for the NLP models.
type ModelEnv struct {
	// NERPath is the token classification model directory.
	// Env: MODEL_NER_PATH (default: models/ner)
	NERPath string `envconfig:"NER_PATH" default:"models/ner"`

	// SentimentPath is the text classification model directory.
	// Env: MODEL_SENTIMENT_PATH (default: models/sentiment)
	SentimentPath string `envconfig:"SENTIMENT_PATH" default:"models/sentiment"`
}

// NotifyEnv holds environment configuration for notifications.
type NotifyEnv struct {
	// Backend is none, postgres, nats or redis.
	// Env: NOTIFY_BACKEND (default: none)
	Backend string `envconfig:"BACKEND" default:"none"`

	// Channel is the channel or subject name.
	// Env: NOTIFY_CHANNEL (default: new_brief_channel)
	Channel string `envconfig:"CHANNEL" default:"new_brief_channel"`

	// NATSURL is the NATS server URL.
	// Env: NOTIFY_NATS_URL (default: nats://127.0.0.1:4222)
	NATSURL string `envconfig:"NATS_URL" default:"nats://127.0.0.1:4222"`

	// RedisURL is the Redis server URL.
	// Env: NOTIFY_REDIS_URL (default: redis://127.0.0.1:6379/0)
	RedisURL string `envconfig:"REDIS_URL" default:"redis://127.0.0.1:6379/0"`

	// LivenessTimeoutSeconds is how long the listener waits before logging a heartbeat.
	// Env: NOTIFY_LIVENESS_TIMEOUT_SECONDS (default: 60)
	LivenessTimeoutSeconds float64 `envconfig:"LIVENESS_TIMEOUT_SECONDS" default:"60"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "NEWSBRIEF" would require NEWSBRIEF_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DatabaseURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DatabaseURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	cfg = applyOption(cfg, WithTriggerSecret(e.TriggerSecret))

	pipeline := NewPipelineConfig().
		WithMinBriefLength(e.MinBriefLength).
		WithMaxBriefLength(e.MaxBriefLength).
		WithMaxBriefAge(seconds(e.MaxBriefAgeSeconds)).
		WithMaxEntries(e.MaxEntries).
		WithAnnotationBatchSize(e.AnnotationBatchSize)
	cfg = applyOption(cfg, WithPipelineConfig(pipeline))

	if e.Annotate.Mode != "" {
		cfg = applyOption(cfg, WithAnnotateMode(AnnotateMode(strings.ToLower(e.Annotate.Mode))))
	}
	cfg = applyOption(cfg, WithAnnotatePollInterval(seconds(e.Annotate.PollIntervalSeconds)))

	cfg = applyOption(cfg, WithScraperConfig(e.Scraper.ToScraperConfig(seconds(e.ScrapeIntervalSeconds))))
	cfg = applyOption(cfg, WithModelConfig(e.Model.ToModelConfig()))
	cfg = applyOption(cfg, WithNotifyConfig(e.Notify.ToNotifyConfig()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToScraperConfig converts ScraperEnv to ScraperConfig.
func (s ScraperEnv) ToScraperConfig(interval time.Duration) ScraperConfig {
	opts := []ScraperConfigOption{
		WithScraperSections(ParseSections(s.Sections)),
		WithScraperInterval(interval),
	}
	if s.URL != "" {
		opts = append(opts, WithScraperURL(s.URL))
	}
	if s.UserAgent != "" {
		opts = append(opts, WithScraperUserAgent(s.UserAgent))
	}
	if s.NavigationTimeoutSeconds > 0 {
		opts = append(opts, WithScraperNavigateTimeout(seconds(s.NavigationTimeoutSeconds)))
	}
	if s.WaitTimeoutSeconds > 0 {
		opts = append(opts, WithScraperWaitTimeout(seconds(s.WaitTimeoutSeconds)))
	}
	if s.ScreenshotPath != "" {
		opts = append(opts, WithScraperScreenshotPath(s.ScreenshotPath))
	}
	if s.ExecutablePath != "" {
		opts = append(opts, WithScraperExecutablePath(s.ExecutablePath))
	}
	return NewScraperConfigWithOptions(opts...)
}

// ToModelConfig converts ModelEnv to ModelConfig.
func (m ModelEnv) ToModelConfig() ModelConfig {
	return NewModelConfig().
		WithNERPath(m.NERPath).
		WithSentimentPath(m.SentimentPath)
}

// ToNotifyConfig converts NotifyEnv to NotifyConfig.
func (n NotifyEnv) ToNotifyConfig() NotifyConfig {
	opts := []NotifyConfigOption{
		WithNotifyChannel(n.Channel),
		WithNotifyLivenessTimeout(seconds(n.LivenessTimeoutSeconds)),
	}
	if n.Backend != "" {
		opts = append(opts, WithNotifyBackend(NotifyBackend(strings.ToLower(n.Backend))))
	}
	if n.NATSURL != "" {
		opts = append(opts, WithNotifyNATSURL(n.NATSURL))
	}
	if n.RedisURL != "" {
		opts = append(opts, WithNotifyRedisURL(n.RedisURL))
	}
	return NewNotifyConfigWithOptions(opts...)
}

// ParseSections parses a comma-separated list of section names.
func ParseSections(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	sections := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			sections = append(sections, trimmed)
		}
	}
	return sections
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
