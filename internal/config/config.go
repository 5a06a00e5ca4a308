// Package config loads the optional gotpl.toml project configuration
// (spec.md §6), the process-wide read-only surface the rest of the
// pipeline consults once per run.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/tigerx8/gotpl/internal/compileerr"
)

// DefaultDir is used when gotpl.toml is absent or its [main].dir key is
// empty.
var DefaultDir = []string{"templates"}

// Config is the decoded shape of gotpl.toml. Unrecognized keys are
// tolerated: go-toml/v2's struct decoding already ignores fields with no
// matching tag, so no explicit "ignored keys" handling is needed.
type Config struct {
	Main struct {
		Dir []string `toml:"dir"`
	} `toml:"main"`
}

// Load reads and decodes path, returning a Config with Main.Dir
// defaulted to DefaultDir when the file is absent or the key is empty.
// A present-but-malformed file is a ConfigError; a missing file is not
// an error at all, matching spec.md's "optional, located by host
// convention".
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Main.Dir = append([]string(nil), DefaultDir...)
			return cfg, nil
		}
		return nil, &compileerr.ConfigError{Path: path, Err: err}
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &compileerr.ConfigError{Path: path, Err: err}
	}
	if len(cfg.Main.Dir) == 0 {
		cfg.Main.Dir = append([]string(nil), DefaultDir...)
	}
	return cfg, nil
}
