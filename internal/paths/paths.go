package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "kvsship"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for configuration files.
//
//	Linux:   $XDG_CONFIG_HOME/kvsship or ~/.config/kvsship
//	macOS:   ~/Library/Application Support/kvsship
func Config() string {
	return filepath.Join(xdg.ConfigHome, toolName)
}

// Default path to the pipeline configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/kvsship/kvsship.yaml
//	macOS:   ~/Library/Application Support/kvsship/kvsship.yaml
func ConfigFile() string {
	return filepath.Join(Config(), toolName+".yaml")
}

// Path to the directory for build outputs (exported image layouts).
//
//	Linux:   $XDG_CACHE_HOME/kvsship or ~/.cache/kvsship
//	macOS:   ~/Library/Caches/kvsship
func Cache() string {
	return filepath.Join(xdg.CacheHome, toolName)
}
