package testsupport

import (
	"path/filepath"
	"testing"

	"lessonforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Providers.Content.APIKey = "test"
	cfgVal.Providers.Speech.APIKey = "test"
	cfgVal.Providers.Avatar.APIKey = "test"
	cfgVal.Providers.Render.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithContentBaseURL points the content provider at the given endpoint.
func WithContentBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Content.BaseURL = url
	}
}

// WithResearchKey sets the research API key on the test config.
func WithResearchKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Research.APIKey = key
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
