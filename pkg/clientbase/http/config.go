package cbhttp

import (
	"time"

	lconfig "github.com/schedyio/schedy/pkg/config"
)

type Config struct {
	Timeout        time.Duration `env:"CLIENT_HTTP_TIMEOUT"`
	AvoidRedirects bool          `env:"CLIENT_HTTP_AVOID_REDIRECTS"`

	// Retries after the first attempt. Zero disables retrying.
	RetryAttempts uint          `env:"CLIENT_HTTP_RETRY_ATTEMPTS" envDefault:"10"`
	RetryDelay    time.Duration `env:"CLIENT_HTTP_RETRY_DELAY" envDefault:"400ms"`
	RetryMaxDelay time.Duration `env:"CLIENT_HTTP_RETRY_MAX_DELAY" envDefault:"8m"`

	// Zero size means no limit on concurrent requests.
	MaxInFlight uint64 `env:"CLIENT_HTTP_MAX_IN_FLIGHT" envDefault:"0"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig matches the environment defaults.
func DefaultConfig() *Config {
	return &Config{
		RetryAttempts: 10,
		RetryDelay:    400 * time.Millisecond,
		RetryMaxDelay: 8 * time.Minute,
	}
}
