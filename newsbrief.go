// Package newsbrief scrapes short financial news briefs, stores each once,
// annotates them with company entities and sentiment, and serves them.
//
// Basic usage:
//
//	client, err := newsbrief.New(
//	    newsbrief.WithSQLite("briefs.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// One scrape-and-save cycle
//	result, err := client.Scrape.Run(ctx)
//
//	// One bounded annotation pass
//	batch, err := client.Annotator.RunBatch(ctx, 0)
//
//	// Annotated briefs of a day
//	briefs, err := client.Query.Articles(ctx, "2025-01-15", "high")
package newsbrief

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helixml/newsbrief/application/service"
	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/infrastructure/api"
	"github.com/helixml/newsbrief/infrastructure/notify"
	"github.com/helixml/newsbrief/infrastructure/persistence"
	"github.com/helixml/newsbrief/infrastructure/provider"
	"github.com/helixml/newsbrief/infrastructure/scraper"
	"github.com/helixml/newsbrief/internal/config"
	"github.com/helixml/newsbrief/internal/database"
)

// Client is the main entry point for the newsbrief library.
//
// Access services via struct fields:
//
//	client.Scrape.Run(ctx)
//	client.Annotator.RunBatch(ctx, 0)
//	client.Query.Summary(ctx, "2025-01-15", "all")
type Client struct {
	Scrape    *service.Scrape
	Annotator *service.Annotator
	Query     *service.BriefQuery
	Briefs    brief.Store

	db        database.Database
	cfg       config.AppConfig
	hugot     *provider.HugotAnalyzer
	publisher notify.Publisher
	closers   []io.Closer
	logger    *slog.Logger
	closed    atomic.Bool
	mu        sync.Mutex
}

// New creates a new Client with the given options. It opens the database
// and brings the schema up to date.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	app := cfg.app
	if app.DBURL() == "" {
		return nil, ErrNoDatabase
	}
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, app.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(ctx, db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(err, errClose)
	}
	if err := persistence.ValidateSchema(ctx, db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	publisher := cfg.publisher
	if publisher == nil {
		publisher, err = notify.NewPublisher(ctx, app.Notify(), db)
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("create publisher: %w", err), errClose)
		}
	}

	var hugot *provider.HugotAnalyzer
	analyzer := cfg.analyzer
	if analyzer == nil {
		models := app.Models()
		hugot = provider.NewHugotAnalyzer(models.NERPath(), models.SentimentPath())
		if !hugot.Available() {
			logger.Warn("NLP models not found, annotation will fail until they are installed",
				slog.String("ner_path", models.NERPath()),
				slog.String("sentiment_path", models.SentimentPath()),
			)
		}
		analyzer = hugot
	}

	fetcher := cfg.fetcher
	if fetcher == nil {
		fetcher = scraper.NewPlaywrightFetcher(app.Scraper(), logger)
	}

	pipeline := app.Pipeline()
	filter := brief.NewFilter(
		brief.WithMinLength(pipeline.MinBriefLength()),
		brief.WithMaxLength(pipeline.MaxBriefLength()),
		brief.WithMaxAge(pipeline.MaxBriefAge()),
	)
	store := persistence.NewBriefStore(db, pipeline.MaxEntries(), logger)

	return &Client{
		Scrape:    service.NewScrape(fetcher, filter, store, publisher, logger).WithClock(cfg.now),
		Annotator: service.NewAnnotator(store, analyzer, pipeline.AnnotationBatchSize(), logger).WithClock(cfg.now),
		Query:     service.NewBriefQuery(store).WithClock(cfg.now),
		Briefs:    store,
		db:        db,
		cfg:       app,
		hugot:     hugot,
		publisher: publisher,
		closers:   cfg.closers,
		logger:    logger,
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Warmup loads the built-in models so the first annotation does not pay for
// it. It does nothing when a custom analyzer was supplied.
func (c *Client) Warmup(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if c.hugot == nil {
		return nil
	}
	return c.hugot.Warmup(ctx)
}

// APIServer returns the HTTP server over this client's services.
func (c *Client) APIServer() *api.APIServer {
	return api.NewAPIServer(c.Query, c.Annotator, c.cfg.TriggerSecret(), c.logger)
}

// Listen subscribes to new-brief notifications and annotates each brief as
// it arrives, until ctx is done.
func (c *Client) Listen(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	subscriber, err := notify.NewSubscriber(ctx, c.cfg.Notify(), c.cfg.DBURL())
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer func() {
		if err := subscriber.Close(); err != nil {
			c.logger.Error("failed to close subscriber", slog.Any("error", err))
		}
	}()

	listener := service.NewListener(subscriber, c.Annotator, c.cfg.Notify().LivenessTimeout(), c.logger)
	return listener.Run(ctx)
}

// Close releases the models, the publisher and the database.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hugot != nil {
		if err := c.hugot.Close(); err != nil {
			c.logger.Error("failed to close hugot analyzer", slog.Any("error", err))
		}
	}

	if err := c.publisher.Close(); err != nil {
		c.logger.Error("failed to close publisher", slog.Any("error", err))
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Debug("newsbrief client closed")
	return nil
}
