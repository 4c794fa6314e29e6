package newsbrief

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/newsbrief/application/service"
	domainservice "github.com/helixml/newsbrief/domain/service"
	"github.com/helixml/newsbrief/infrastructure/notify"
	"github.com/helixml/newsbrief/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	app       config.AppConfig
	logger    *slog.Logger
	fetcher   service.Fetcher
	analyzer  domainservice.Analyzer
	publisher notify.Publisher
	now       func() time.Time
	closers   []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		app: config.NewAppConfig(),
		now: time.Now,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig replaces the whole application configuration, typically the
// result of config.LoadConfig.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.app = cfg
	}
}

// WithDatabaseURL sets the database connection URL.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL(url))
	}
}

// WithSQLite stores briefs in the SQLite file at path.
func WithSQLite(path string) Option {
	return WithDatabaseURL("sqlite:///" + path)
}

// WithPostgres stores briefs in the PostgreSQL database at dsn.
func WithPostgres(dsn string) Option {
	return WithDatabaseURL(dsn)
}

// WithPipelineConfig sets the filter, retention and batch tuning.
func WithPipelineConfig(p config.PipelineConfig) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithPipelineConfig(p))
	}
}

// WithNotifyConfig sets the notification backend.
func WithNotifyConfig(n config.NotifyConfig) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithNotifyConfig(n))
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithFetcher replaces the headless browser fetcher.
func WithFetcher(f service.Fetcher) Option {
	return func(c *clientConfig) {
		c.fetcher = f
	}
}

// WithAnalyzer replaces the built-in hugot models.
func WithAnalyzer(a domainservice.Analyzer) Option {
	return func(c *clientConfig) {
		c.analyzer = a
	}
}

// WithPublisher replaces the configured notification publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(c *clientConfig) {
		c.publisher = p
	}
}

// WithClock sets the time source used for publish-time inference and
// annotation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *clientConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
