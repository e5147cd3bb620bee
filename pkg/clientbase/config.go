package clientbase

import (
	lconfig "github.com/schedyio/schedy/pkg/config"
)

type Config struct {
	UserAgent string `env:"CLIENT_USER_AGENT" envDefault:"schedy-go"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
