package cli

import (
	"fmt"
	"path/filepath"

	"github.com/shivanshkc/statbench/pkg/runner"
)

// validateConfig validates the options of the root command that the runner does not
// check itself. It returns an empty string when they are valid.
func validateConfig(cfg runner.Config) string {
	// Filter patterns must not be empty.
	for flag, patterns := range map[string][]string{
		"--include":       cfg.Include,
		"--exclude":       cfg.Exclude,
		"--include_regex": cfg.IncludeRegex,
		"--exclude_regex": cfg.ExcludeRegex,
	} {
		for _, p := range patterns {
			if p == "" {
				return flag + " requires a non-empty pattern."
			}
		}
	}

	// Outputs must not overwrite each other.
	outputs := []struct{ flag, path string }{
		{"--json", cfg.JSON},
		{"--msgpack", cfg.Msgpack},
		{"--compressed-msgpack", cfg.CompressedMsgpack},
		{"--plot", cfg.Plot},
	}
	seen := map[string]string{}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		clean := filepath.Clean(out.path)
		if other, ok := seen[clean]; ok {
			return fmt.Sprintf("%s and %s both write to %q.", other, out.flag, out.path)
		}
		seen[clean] = out.flag
	}

	return ""
}
