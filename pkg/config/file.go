package lconfig

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// LoadStaticYamlConfig reads a YAML or JSON file into target.
func LoadStaticYamlConfig(filename string, filesystem afero.Fs, target interface{}) error {
	file, err := filesystem.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(content, target); err != nil {
		return errors.Wrapf(err, "parsing %s", filename)
	}
	log.Debugf("loaded config file %s", filename)
	return nil
}

// SaveJsonConfig writes source as indented JSON, readable by the owner only.
func SaveJsonConfig(filename string, filesystem afero.Fs, source interface{}) error {
	content, err := jsonIndent(source)
	if err != nil {
		return err
	}

	if err := filesystem.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return errors.WithStack(err)
	}
	if err := afero.WriteFile(filesystem, filename, content, 0600); err != nil {
		return errors.WithStack(err)
	}
	// WriteFile keeps the mode of an existing file.
	return errors.WithStack(filesystem.Chmod(filename, 0600))
}
