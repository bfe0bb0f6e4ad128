// Package config loads the optional per-directory sidecar configuration.
// Each directory may carry a .barrelrc.json with an "exclude" list of glob
// patterns; anything missing or malformed degrades to an empty exclusion set.
package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// SidecarName is the per-directory configuration filename.
const SidecarName = ".barrelrc.json"

// Excludes holds the exclusion patterns for one directory.
type Excludes struct {
	Patterns []string `json:"exclude"`
}

// Load reads dir's sidecar config from fs. A missing file yields an empty
// config silently; an unreadable or unparseable file yields an empty config
// with a warning. Load never fails the caller.
func Load(fs afero.Fs, dir string, log *zap.Logger) Excludes {
	path := filepath.Join(dir, SidecarName)

	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return Excludes{}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		log.Warn("could not read sidecar config, ignoring exclusions",
			zap.String("path", path), zap.Error(err))
		return Excludes{}
	}

	var ex Excludes
	if err := json.Unmarshal(data, &ex); err != nil {
		log.Warn("invalid sidecar config, ignoring exclusions",
			zap.String("path", path), zap.Error(err))
		return Excludes{}
	}
	return ex
}
