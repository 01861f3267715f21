package config

import (
	"github.com/gobwas/glob"
)

// Merge merges a loaded config on top of defaults. The loaded config's
// rules override the defaults; any rule not mentioned keeps its
// default value. Include/Exclude/Marker replace the defaults only when
// set; Overrides come from the loaded config only.
func Merge(defaults, loaded *Config) *Config {
	rules := make(map[string]RuleCfg, len(defaults.Rules))
	for k, v := range defaults.Rules {
		rules[k] = v
	}

	if loaded == nil {
		return &Config{
			Marker:  defaults.Marker,
			Include: defaults.Include,
			Exclude: defaults.Exclude,
			Rules:   rules,
		}
	}

	for k, v := range loaded.Rules {
		rules[k] = v
	}

	merged := &Config{
		Marker:    defaults.Marker,
		Include:   defaults.Include,
		Exclude:   defaults.Exclude,
		Rules:     rules,
		RulesDir:  loaded.RulesDir,
		Overrides: loaded.Overrides,
	}
	if loaded.Marker != "" {
		merged.Marker = loaded.Marker
	}
	if len(loaded.Include) > 0 {
		merged.Include = loaded.Include
	}
	if len(loaded.Exclude) > 0 {
		merged.Exclude = loaded.Exclude
	}
	return merged
}

// Effective returns the effective rule configuration for a given file
// path. It starts with the top-level rules and then applies each
// override whose file patterns match filePath, in order. Later
// overrides take precedence.
func Effective(cfg *Config, filePath string) map[string]RuleCfg {
	result := make(map[string]RuleCfg, len(cfg.Rules))
	for k, v := range cfg.Rules {
		result[k] = v
	}

	for _, o := range cfg.Overrides {
		if matchesAny(o.Files, filePath) {
			for k, v := range o.Rules {
				result[k] = v
			}
		}
	}

	return result
}

// matchesAny returns true if filePath matches any of the given glob
// patterns.
func matchesAny(patterns []string, filePath string) bool {
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			// Skip invalid patterns silently.
			continue
		}
		if g.Match(filePath) {
			return true
		}
	}
	return false
}
