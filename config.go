package httpdoctor

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/httpdoctor/httpdoctor/message"
)

// Config configures a Doctor.
type Config struct {
	// MaxRedirects bounds how many redirect hops are followed.
	MaxRedirects int
	// BodyCap is the maximum number of body bytes captured per response.
	BodyCap int64
	// FetchTimeout bounds each individual fetch.
	FetchTimeout time.Duration
	// DisableRelated turns off auxiliary fetches (redirect chase,
	// conditional/range/negotiation retries) for single-shot analysis.
	DisableRelated bool
	// Fetcher performs the raw exchanges. The built-in wire client is
	// used if nil.
	Fetcher Fetcher
	// Clock supplies receipt and analysis times for the freshness
	// arithmetic. The wall clock is used if nil.
	Clock clock.Clock
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

const (
	defaultMaxRedirects = 5
	defaultFetchTimeout = 15 * time.Second
)

// ConfigurationError reports an invalid option. It is the only error that
// escapes to callers; everything later becomes Notes on a Diagnosis.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Option, e.Reason)
}

func (c *Config) withDefaults() (Config, error) {
	cfg := *c
	if cfg.MaxRedirects < 0 {
		return cfg, &ConfigurationError{"MaxRedirects", "must not be negative"}
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.BodyCap < 0 {
		return cfg, &ConfigurationError{"BodyCap", "must not be negative"}
	}
	if cfg.BodyCap == 0 {
		cfg.BodyCap = message.DefaultBodyCap
	}
	if cfg.FetchTimeout < 0 {
		return cfg, &ConfigurationError{"FetchTimeout", "must not be negative"}
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = &WireFetcher{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return cfg, nil
}
