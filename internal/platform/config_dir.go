package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the per-user configuration directory for appName. It
// falls back to the OS convention under the home directory when the
// environment does not define one.
func ConfigDir(appName string) (string, error) {
	base, err := os.UserConfigDir()
	if err == nil && base != "" {
		return filepath.Join(base, appName), nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("resolve config dir: %w", err)
		}
		return "", fmt.Errorf("resolve config dir: %w", homeErr)
	}
	return filepath.Join(fallbackConfigDir(homeDir), appName), nil
}
