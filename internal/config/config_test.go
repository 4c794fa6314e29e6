package config

import (
	"testing"
	"time"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultHost != "0.0.0.0" {
		t.Errorf("DefaultHost = %v, want '0.0.0.0'", DefaultHost)
	}
	if DefaultPort != 10000 {
		t.Errorf("DefaultPort = %v, want 10000", DefaultPort)
	}
	if DefaultMinBriefLength != 180 {
		t.Errorf("DefaultMinBriefLength = %v, want 180", DefaultMinBriefLength)
	}
	if DefaultMaxEntries != 300 {
		t.Errorf("DefaultMaxEntries = %v, want 300", DefaultMaxEntries)
	}
	if DefaultAnnotationBatchSize != 5 {
		t.Errorf("DefaultAnnotationBatchSize = %v, want 5", DefaultAnnotationBatchSize)
	}
	if HighConfidenceThreshold != 0.85 {
		t.Errorf("HighConfidenceThreshold = %v, want 0.85", HighConfidenceThreshold)
	}
	if DefaultScraperNavigateTimeout != 60*time.Second {
		t.Errorf("DefaultScraperNavigateTimeout = %v, want 60s", DefaultScraperNavigateTimeout)
	}
	if DefaultScraperWaitTimeout != 30*time.Second {
		t.Errorf("DefaultScraperWaitTimeout = %v, want 30s", DefaultScraperWaitTimeout)
	}
}

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.Addr() != "0.0.0.0:10000" {
		t.Errorf("Addr() = %v, want 0.0.0.0:10000", cfg.Addr())
	}
	if cfg.DBURL() != "" {
		t.Errorf("DBURL() = %v, want empty", cfg.DBURL())
	}
	if cfg.AnnotateMode() != AnnotateModeTrigger {
		t.Errorf("AnnotateMode() = %v, want trigger", cfg.AnnotateMode())
	}
	if cfg.AnnotatePollInterval() != 5*time.Minute {
		t.Errorf("AnnotatePollInterval() = %v, want 5m", cfg.AnnotatePollInterval())
	}
	if cfg.Notify().Enabled() {
		t.Error("Notify().Enabled() = true, want false")
	}
	if got := cfg.Scraper().Sections(); len(got) != 2 || got[0] != "Briefs" || got[1] != "Press Releases" {
		t.Errorf("Scraper().Sections() = %v", got)
	}
}

func TestAppConfig_Apply(t *testing.T) {
	base := NewAppConfig()
	cfg := base.Apply(WithPort(9999), WithDBURL("sqlite:///x.db"), WithTriggerSecret("s"))

	if cfg.Port() != 9999 {
		t.Errorf("Port() = %v, want 9999", cfg.Port())
	}
	if cfg.TriggerSecret() != "s" {
		t.Errorf("TriggerSecret() = %v, want s", cfg.TriggerSecret())
	}
	if base.Port() != DefaultPort {
		t.Errorf("Apply mutated the receiver: Port() = %v", base.Port())
	}
}

func TestScraperConfig_SectionsAreCopied(t *testing.T) {
	cfg := NewScraperConfig()
	sections := cfg.Sections()
	sections[0] = "changed"

	if cfg.Sections()[0] != "Briefs" {
		t.Errorf("Sections() exposed internal slice")
	}
}

func TestPipelineConfig_IgnoresInvalidValues(t *testing.T) {
	p := NewPipelineConfig().
		WithMinBriefLength(-1).
		WithMaxEntries(0).
		WithAnnotationBatchSize(-3)

	if p.MinBriefLength() != DefaultMinBriefLength {
		t.Errorf("MinBriefLength() = %v, want %v", p.MinBriefLength(), DefaultMinBriefLength)
	}
	if p.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries() = %v, want %v", p.MaxEntries(), DefaultMaxEntries)
	}
	if p.AnnotationBatchSize() != DefaultAnnotationBatchSize {
		t.Errorf("AnnotationBatchSize() = %v, want %v", p.AnnotationBatchSize(), DefaultAnnotationBatchSize)
	}
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []AppConfigOption
		wantErr bool
	}{
		{"missing database url", nil, true},
		{"sqlite", []AppConfigOption{WithDBURL("sqlite:///briefs.db")}, false},
		{"bad annotate mode", []AppConfigOption{WithDBURL("sqlite:///b.db"), WithAnnotateMode("cron")}, true},
		{
			"listen without backend",
			[]AppConfigOption{WithDBURL("sqlite:///b.db"), WithAnnotateMode(AnnotateModeListen)},
			true,
		},
		{
			"postgres notify on sqlite",
			[]AppConfigOption{
				WithDBURL("sqlite:///b.db"),
				WithNotifyConfig(NewNotifyConfigWithOptions(WithNotifyBackend(NotifyBackendPostgres))),
			},
			true,
		},
		{
			"postgres notify on postgres",
			[]AppConfigOption{
				WithDBURL("postgresql://localhost/briefs"),
				WithAnnotateMode(AnnotateModeListen),
				WithNotifyConfig(NewNotifyConfigWithOptions(WithNotifyBackend(NotifyBackendPostgres))),
			},
			false,
		},
		{
			"unknown backend",
			[]AppConfigOption{
				WithDBURL("sqlite:///b.db"),
				WithNotifyConfig(NewNotifyConfigWithOptions(WithNotifyBackend("kafka"))),
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAppConfigWithOptions(tt.opts...).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppConfig_MaskedDBURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"", "(unset)"},
		{"sqlite:///data/briefs.db", "sqlite:///data/briefs.db"},
		{"postgres://user:hunter2@db:5432/briefs", "postgres://user:***@db:5432/briefs"},
		{"postgres://user@db/briefs", "postgres://user@db/briefs"},
	}

	for _, tt := range tests {
		got := NewAppConfigWithOptions(WithDBURL(tt.url)).maskedDBURL()
		if got != tt.want {
			t.Errorf("maskedDBURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
