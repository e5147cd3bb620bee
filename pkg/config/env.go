package lconfig

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// EnvConfigDir names a directory whose files are read as extra environment
// variables, see ReadConfigDir.
const EnvConfigDir = "CONFIG_DIR"

// Parse fills v from the environment. Fields whose variable is unset or empty
// keep their current value unless the field has an envDefault.
func Parse(v interface{}) error {
	return ParseFs(afero.NewOsFs(), v)
}

// ParseFs is Parse with the configuration directory read from fs. Real
// environment variables win over the directory.
func ParseFs(fs afero.Fs, v interface{}) error {
	var opts env.Options
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		vars, err := ReadConfigDir(fs, dir)
		if err != nil {
			return err
		}
		for _, pair := range os.Environ() {
			key, value, _ := strings.Cut(pair, "=")
			vars[key] = value
		}
		opts.Environment = vars
	}
	return errors.WithStack(env.Parse(v, opts))
}
