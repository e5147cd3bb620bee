package schedy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	lconfig "github.com/schedyio/schedy/pkg/config"
)

type TokenType string

const (
	TokenTypeAPI      TokenType = "apiToken"
	TokenTypePassword TokenType = "password"
)

// Config holds the service root and the account credentials.
type Config struct {
	Root      string    `json:"root" env:"SCHEDY_ROOT"`
	Email     string    `json:"email" env:"SCHEDY_EMAIL"`
	Token     string    `json:"token" env:"SCHEDY_TOKEN"`
	TokenType TokenType `json:"token_type,omitempty" env:"SCHEDY_TOKEN_TYPE"`
}

// DefaultConfigPath is ~/.schedy/client.json.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(home, ".schedy", "client.json"), nil
}

// LoadConfig reads a JSON or YAML configuration file, overlays the SCHEDY_*
// environment variables and validates the result. An empty path reads the
// default location.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := lconfig.LoadStaticYamlConfig(path, fs, &cfg); err != nil {
		return nil, errors.Wrapf(err, "loading schedy configuration")
	}
	if err := lconfig.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfig validates an inline configuration. The argument is not modified.
func NewConfig(override Config) (*Config, error) {
	cfg := override
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the root URL and the token type.
func (c *Config) Validate() error {
	if c.TokenType == "" {
		c.TokenType = TokenTypeAPI
	}
	switch c.TokenType {
	case TokenTypeAPI, TokenTypePassword:
	default:
		return fmt.Errorf("%w: token type %q is neither %q nor %q", ErrInvalidConfig, c.TokenType, TokenTypeAPI, TokenTypePassword)
	}

	var missing []string
	if c.Root == "" {
		missing = append(missing, "root")
	}
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if !strings.HasSuffix(c.Root, "/") {
		c.Root += "/"
	}
	return nil
}

// SaveConfig writes the configuration, readable by the owner only.
func SaveConfig(fs afero.Fs, path string, cfg *Config) error {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	return lconfig.SaveJsonConfig(path, fs, cfg)
}
