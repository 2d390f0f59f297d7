// conf/utils.go various util functions for configuration package
package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/swordgate/internal/errors"
)

const appDirName = "swordgate"

// GetDefaultConfigPaths returns the directories searched for config.yaml, in
// order: the working directory, the per-user config directory and a system-wide one.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}

	if homeDir, err := os.UserHomeDir(); err == nil {
		if runtime.GOOS == "windows" {
			paths = append(paths, filepath.Join(homeDir, "AppData", "Roaming", appDirName))
		} else {
			paths = append(paths, filepath.Join(homeDir, ".config", appDirName))
		}
	}

	if runtime.GOOS != "windows" {
		paths = append(paths, filepath.Join("/etc", appDirName))
	}

	return paths
}

// FindConfigFile locates config.yaml on the default search path.
func FindConfigFile() (string, error) {
	for _, path := range GetDefaultConfigPaths() {
		configFilePath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Component("conf").
		Category(errors.CategoryNotFound).
		Context("operation", "find-config-file").
		Build()
}
