package lconfig

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ReadConfigDir maps the name of every file directly under dirPath to its
// trimmed content. Directories and dotfiles are skipped, so a mounted
// Kubernetes ConfigMap or Secret reads as expected.
func ReadConfigDir(fs afero.Fs, dirPath string) (map[string]string, error) {
	infos, err := afero.ReadDir(fs, dirPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config dir %s", dirPath)
	}

	vars := make(map[string]string, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		content, err := afero.ReadFile(fs, filepath.Join(dirPath, name))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		vars[name] = strings.TrimSpace(string(content))
	}
	return vars, nil
}
