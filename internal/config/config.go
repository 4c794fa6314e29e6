// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                   = "0.0.0.0"
	DefaultPort                   = 10000
	DefaultLogLevel               = "INFO"
	DefaultMinBriefLength         = 180
	DefaultMaxEntries             = 300
	DefaultAnnotationBatchSize    = 5
	DefaultAnnotatePollInterval   = 300.0 // seconds
	DefaultScraperURL             = "https://newsfilter.io"
	DefaultScraperUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"
	DefaultScraperNavigateTimeout = 60 * time.Second
	DefaultScraperWaitTimeout     = 30 * time.Second
	DefaultScraperScreenshotPath  = "error_timeout_final.png"
	DefaultNERModelPath           = "models/ner"
	DefaultSentimentModelPath     = "models/sentiment"
	DefaultNotifyChannel          = "new_brief_channel"
	DefaultNotifyNATSURL          = "nats://127.0.0.1:4222"
	DefaultNotifyRedisURL         = "redis://127.0.0.1:6379/0"
	DefaultNotifyLivenessTimeout  = 60 * time.Second
	HighConfidenceThreshold       = 0.85
)

// DefaultScraperSections are the page sections scraped when none are configured.
var DefaultScraperSections = []string{"Briefs", "Press Releases"}

// ErrMissingDatabaseURL is returned when no database connection string is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AnnotateMode selects how the serve command drives the annotator.
type AnnotateMode string

// AnnotateMode values.
const (
	AnnotateModeTrigger AnnotateMode = "trigger"
	AnnotateModePoll    AnnotateMode = "poll"
	AnnotateModeListen  AnnotateMode = "listen"
)

// NotifyBackend selects the publish/subscribe transport for new-brief notifications.
type NotifyBackend string

// NotifyBackend values.
const (
	NotifyBackendNone     NotifyBackend = "none"
	NotifyBackendPostgres NotifyBackend = "postgres"
	NotifyBackendNATS     NotifyBackend = "nats"
	NotifyBackendRedis    NotifyBackend = "redis"
)

// PipelineConfig holds the tuning constants of the scrape and annotate pipeline.
type PipelineConfig struct {
	minBriefLength      int
	maxBriefLength      int
	maxBriefAge         time.Duration
	maxEntries          int
	annotationBatchSize int
}

// NewPipelineConfig creates a PipelineConfig with defaults.
func NewPipelineConfig() PipelineConfig {
	return PipelineConfig{
		minBriefLength:      DefaultMinBriefLength,
		maxEntries:          DefaultMaxEntries,
		annotationBatchSize: DefaultAnnotationBatchSize,
	}
}

// MinBriefLength returns the exclusive lower bound on brief length.
func (p PipelineConfig) MinBriefLength() int { return p.minBriefLength }

// MaxBriefLength returns the inclusive upper bound on brief length (0 = unbounded).
func (p PipelineConfig) MaxBriefLength() int { return p.maxBriefLength }

// MaxBriefAge returns the maximum accepted brief age (0 = unbounded).
func (p PipelineConfig) MaxBriefAge() time.Duration { return p.maxBriefAge }

// MaxEntries returns the retention bound on the briefs table.
func (p PipelineConfig) MaxEntries() int { return p.maxEntries }

// AnnotationBatchSize returns the number of rows processed per annotation pass.
func (p PipelineConfig) AnnotationBatchSize() int { return p.annotationBatchSize }

// WithMinBriefLength returns a new config with the given minimum length.
func (p PipelineConfig) WithMinBriefLength(n int) PipelineConfig {
	if n >= 0 {
		p.minBriefLength = n
	}
	return p
}

// WithMaxBriefLength returns a new config with the given maximum length.
func (p PipelineConfig) WithMaxBriefLength(n int) PipelineConfig {
	if n >= 0 {
		p.maxBriefLength = n
	}
	return p
}

// WithMaxBriefAge returns a new config with the given maximum age.
func (p PipelineConfig) WithMaxBriefAge(d time.Duration) PipelineConfig {
	if d >= 0 {
		p.maxBriefAge = d
	}
	return p
}

// WithMaxEntries returns a new config with the given retention bound.
func (p PipelineConfig) WithMaxEntries(n int) PipelineConfig {
	if n > 0 {
		p.maxEntries = n
	}
	return p
}

// WithAnnotationBatchSize returns a new config with the given batch size.
func (p PipelineConfig) WithAnnotationBatchSize(n int) PipelineConfig {
	if n > 0 {
		p.annotationBatchSize = n
	}
	return p
}

// ScraperConfig configures the headless browser fetcher.
type ScraperConfig struct {
	url             string
	sections        []string
	userAgent       string
	navigateTimeout time.Duration
	waitTimeout     time.Duration
	screenshotPath  string
	executablePath  string
	interval        time.Duration
}

// NewScraperConfig creates a ScraperConfig with defaults.
func NewScraperConfig() ScraperConfig {
	sections := make([]string, len(DefaultScraperSections))
	copy(sections, DefaultScraperSections)
	return ScraperConfig{
		url:             DefaultScraperURL,
		sections:        sections,
		userAgent:       DefaultScraperUserAgent,
		navigateTimeout: DefaultScraperNavigateTimeout,
		waitTimeout:     DefaultScraperWaitTimeout,
		screenshotPath:  DefaultScraperScreenshotPath,
	}
}

// URL returns the page to scrape.
func (s ScraperConfig) URL() string { return s.url }

// Sections returns the page sections whose links are collected.
func (s ScraperConfig) Sections() []string {
	result := make([]string, len(s.sections))
	copy(result, s.sections)
	return result
}

// UserAgent returns the browser context user agent.
func (s ScraperConfig) UserAgent() string { return s.userAgent }

// NavigateTimeout returns the page navigation timeout.
func (s ScraperConfig) NavigateTimeout() time.Duration { return s.navigateTimeout }

// WaitTimeout returns the timeout applied to each selector wait.
func (s ScraperConfig) WaitTimeout() time.Duration { return s.waitTimeout }

// ScreenshotPath returns where a screenshot is written on timeout.
func (s ScraperConfig) ScreenshotPath() string { return s.screenshotPath }

// ExecutablePath returns the browser binary override, if any.
func (s ScraperConfig) ExecutablePath() string { return s.executablePath }

// Interval returns the in-process scrape period (0 disables periodic scraping).
func (s ScraperConfig) Interval() time.Duration { return s.interval }

// ScraperConfigOption is a functional option for ScraperConfig.
type ScraperConfigOption func(*ScraperConfig)

// WithScraperURL sets the page to scrape.
func WithScraperURL(url string) ScraperConfigOption {
	return func(s *ScraperConfig) { s.url = url }
}

// WithScraperSections sets the scraped sections.
func WithScraperSections(sections []string) ScraperConfigOption {
	return func(s *ScraperConfig) {
		if len(sections) > 0 {
			s.sections = make([]string, len(sections))
			copy(s.sections, sections)
		}
	}
}

// WithScraperUserAgent sets the user agent.
func WithScraperUserAgent(ua string) ScraperConfigOption {
	return func(s *ScraperConfig) { s.userAgent = ua }
}

// WithScraperNavigateTimeout sets the navigation timeout.
func WithScraperNavigateTimeout(d time.Duration) ScraperConfigOption {
	return func(s *ScraperConfig) { s.navigateTimeout = d }
}

// WithScraperWaitTimeout sets the selector wait timeout.
func WithScraperWaitTimeout(d time.Duration) ScraperConfigOption {
	return func(s *ScraperConfig) { s.waitTimeout = d }
}

// WithScraperScreenshotPath sets the timeout screenshot path.
func WithScraperScreenshotPath(path string) ScraperConfigOption {
	return func(s *ScraperConfig) { s.screenshotPath = path }
}

// WithScraperExecutablePath sets the browser binary override.
func WithScraperExecutablePath(path string) ScraperConfigOption {
	return func(s *ScraperConfig) { s.executablePath = path }
}

// WithScraperInterval sets the periodic scrape interval.
func WithScraperInterval(d time.Duration) ScraperConfigOption {
	return func(s *ScraperConfig) { s.interval = d }
}

// NewScraperConfigWithOptions creates a ScraperConfig with functional options.
func NewScraperConfigWithOptions(opts ...ScraperConfigOption) ScraperConfig {
	s := NewScraperConfig()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ModelConfig locates the NLP model directories.
type ModelConfig struct {
	nerPath       string
	sentimentPath string
}

// NewModelConfig creates a ModelConfig with defaults.
func NewModelConfig() ModelConfig {
	return ModelConfig{
		nerPath:       DefaultNERModelPath,
		sentimentPath: DefaultSentimentModelPath,
	}
}

// NERPath returns the token classification model directory.
func (m ModelConfig) NERPath() string { return m.nerPath }

// SentimentPath returns the text classification model directory.
func (m ModelConfig) SentimentPath() string { return m.sentimentPath }

// WithNERPath returns a new config with the given NER model directory.
func (m ModelConfig) WithNERPath(path string) ModelConfig {
	if path != "" {
		m.nerPath = path
	}
	return m
}

// WithSentimentPath returns a new config with the given sentiment model directory.
func (m ModelConfig) WithSentimentPath(path string) ModelConfig {
	if path != "" {
		m.sentimentPath = path
	}
	return m
}

// NotifyConfig configures new-brief notifications.
type NotifyConfig struct {
	backend         NotifyBackend
	channel         string
	natsURL         string
	redisURL        string
	livenessTimeout time.Duration
}

// NewNotifyConfig creates a NotifyConfig with defaults.
func NewNotifyConfig() NotifyConfig {
	return NotifyConfig{
		backend:         NotifyBackendNone,
		channel:         DefaultNotifyChannel,
		natsURL:         DefaultNotifyNATSURL,
		redisURL:        DefaultNotifyRedisURL,
		livenessTimeout: DefaultNotifyLivenessTimeout,
	}
}

// Backend returns the notification transport.
func (n NotifyConfig) Backend() NotifyBackend { return n.backend }

// Channel returns the channel (postgres, redis) or subject (nats) name.
func (n NotifyConfig) Channel() string { return n.channel }

// NATSURL returns the NATS server URL.
func (n NotifyConfig) NATSURL() string { return n.natsURL }

// RedisURL returns the Redis server URL.
func (n NotifyConfig) RedisURL() string { return n.redisURL }

// LivenessTimeout returns how long the listener waits before logging that it is alive.
func (n NotifyConfig) LivenessTimeout() time.Duration { return n.livenessTimeout }

// Enabled reports whether a notification backend is configured.
func (n NotifyConfig) Enabled() bool {
	return n.backend != "" && n.backend != NotifyBackendNone
}

// NotifyConfigOption is a functional option for NotifyConfig.
type NotifyConfigOption func(*NotifyConfig)

// WithNotifyBackend sets the backend.
func WithNotifyBackend(b NotifyBackend) NotifyConfigOption {
	return func(n *NotifyConfig) { n.backend = b }
}

// WithNotifyChannel sets the channel name.
func WithNotifyChannel(channel string) NotifyConfigOption {
	return func(n *NotifyConfig) {
		if channel != "" {
			n.channel = channel
		}
	}
}

// WithNotifyNATSURL sets the NATS URL.
func WithNotifyNATSURL(url string) NotifyConfigOption {
	return func(n *NotifyConfig) { n.natsURL = url }
}

// WithNotifyRedisURL sets the Redis URL.
func WithNotifyRedisURL(url string) NotifyConfigOption {
	return func(n *NotifyConfig) { n.redisURL = url }
}

// WithNotifyLivenessTimeout sets the listener liveness timeout.
func WithNotifyLivenessTimeout(d time.Duration) NotifyConfigOption {
	return func(n *NotifyConfig) {
		if d > 0 {
			n.livenessTimeout = d
		}
	}
}

// NewNotifyConfigWithOptions creates a NotifyConfig with functional options.
func NewNotifyConfigWithOptions(opts ...NotifyConfigOption) NotifyConfig {
	n := NewNotifyConfig()
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host                 string
	port                 int
	dbURL                string
	logLevel             string
	logFormat            LogFormat
	triggerSecret        string
	annotateMode         AnnotateMode
	annotatePollInterval time.Duration
	pipeline             PipelineConfig
	scraper              ScraperConfig
	models               ModelConfig
	notify               NotifyConfig
}

// NewAppConfig creates a new AppConfig with defaults.
// The database URL has no default; Validate rejects a config without one.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:                 DefaultHost,
		port:                 DefaultPort,
		logLevel:             DefaultLogLevel,
		logFormat:            LogFormatPretty,
		annotateMode:         AnnotateModeTrigger,
		annotatePollInterval: time.Duration(DefaultAnnotatePollInterval * float64(time.Second)),
		pipeline:             NewPipelineConfig(),
		scraper:              NewScraperConfig(),
		models:               NewModelConfig(),
		notify:               NewNotifyConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// TriggerSecret returns the shared secret guarding the annotation trigger.
func (c AppConfig) TriggerSecret() string { return c.triggerSecret }

// AnnotateMode returns how serve drives the annotator.
func (c AppConfig) AnnotateMode() AnnotateMode { return c.annotateMode }

// AnnotatePollInterval returns the poll-mode period.
func (c AppConfig) AnnotatePollInterval() time.Duration { return c.annotatePollInterval }

// Pipeline returns the pipeline tuning config.
func (c AppConfig) Pipeline() PipelineConfig { return c.pipeline }

// Scraper returns the scraper config.
func (c AppConfig) Scraper() ScraperConfig { return c.scraper }

// Models returns the model config.
func (c AppConfig) Models() ModelConfig { return c.models }

// Notify returns the notification config.
func (c AppConfig) Notify() NotifyConfig { return c.notify }

// IsPostgres reports whether the configured database is PostgreSQL.
func (c AppConfig) IsPostgres() bool {
	return strings.HasPrefix(c.dbURL, "postgres://") || strings.HasPrefix(c.dbURL, "postgresql://")
}

// Validate checks the configuration for errors that must abort startup.
func (c AppConfig) Validate() error {
	if c.dbURL == "" {
		return ErrMissingDatabaseURL
	}
	switch c.annotateMode {
	case AnnotateModeTrigger, AnnotateModePoll, AnnotateModeListen:
	default:
		return fmt.Errorf("invalid ANNOTATE_MODE %q: want trigger, poll or listen", c.annotateMode)
	}
	switch c.notify.Backend() {
	case NotifyBackendNone, NotifyBackendNATS, NotifyBackendRedis:
	case NotifyBackendPostgres:
		if !c.IsPostgres() {
			return fmt.Errorf("NOTIFY_BACKEND=postgres requires a postgres DATABASE_URL")
		}
	default:
		return fmt.Errorf("invalid NOTIFY_BACKEND %q: want none, postgres, nats or redis", c.notify.Backend())
	}
	if c.annotateMode == AnnotateModeListen && !c.notify.Enabled() {
		return fmt.Errorf("ANNOTATE_MODE=listen requires NOTIFY_BACKEND")
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithTriggerSecret sets the annotation trigger secret.
func WithTriggerSecret(secret string) AppConfigOption {
	return func(c *AppConfig) { c.triggerSecret = secret }
}

// WithAnnotateMode sets the annotate mode.
func WithAnnotateMode(mode AnnotateMode) AppConfigOption {
	return func(c *AppConfig) { c.annotateMode = mode }
}

// WithAnnotatePollInterval sets the poll-mode period.
func WithAnnotatePollInterval(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.annotatePollInterval = d
		}
	}
}

// WithPipelineConfig sets the pipeline config.
func WithPipelineConfig(p PipelineConfig) AppConfigOption {
	return func(c *AppConfig) { c.pipeline = p }
}

// WithScraperConfig sets the scraper config.
func WithScraperConfig(s ScraperConfig) AppConfigOption {
	return func(c *AppConfig) { c.scraper = s }
}

// WithModelConfig sets the model config.
func WithModelConfig(m ModelConfig) AppConfigOption {
	return func(c *AppConfig) { c.models = m }
}

// WithNotifyConfig sets the notification config.
func WithNotifyConfig(n NotifyConfig) AppConfigOption {
	return func(c *AppConfig) { c.notify = n }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// The trigger secret is never logged, only whether one is set.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("log_level", c.logLevel),
		slog.Bool("trigger_secret_set", c.triggerSecret != ""),
		slog.String("annotate_mode", string(c.annotateMode)),
		slog.Int("min_brief_length", c.pipeline.MinBriefLength()),
		slog.Int("max_entries", c.pipeline.MaxEntries()),
		slog.Int("annotation_batch_size", c.pipeline.AnnotationBatchSize()),
		slog.String("scraper_url", c.scraper.URL()),
		slog.Duration("scrape_interval", c.scraper.Interval()),
		slog.String("notify_backend", string(c.notify.Backend())),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(unset)"
	}
	// Mask password in postgres URLs
	schemeEnd := strings.Index(c.dbURL, "://")
	at := strings.LastIndex(c.dbURL, "@")
	if schemeEnd < 0 || at < 0 || at < schemeEnd {
		return c.dbURL
	}
	creds := c.dbURL[schemeEnd+3 : at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return c.dbURL
	}
	return c.dbURL[:schemeEnd+3] + creds[:colon] + ":***" + c.dbURL[at:]
}
