// Package config loads and merges .archlint.yml configuration.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Smith-Tools/archlint/internal/rule"
)

// DefaultMarker is the conformance identifier reducer declarations are
// matched against when the config does not override it.
const DefaultMarker = "Reducer"

// DefaultInclude is the include-glob set used when none is configured.
var DefaultInclude = []string{"**/*.swift"}

// DefaultExclude covers build artifacts and vendored dependencies so
// third-party code is never analyzed.
var DefaultExclude = []string{
	"**/DerivedData/**",
	"**/.build/**",
	"**/Pods/**",
	"**/.swiftpm/**",
	"**/ThirdParty/**",
	"**/Vendor/**",
	"**/External/**",
}

// Config is the top-level configuration.
type Config struct {
	Marker    string             `yaml:"marker"`
	Include   []string           `yaml:"include"`
	Exclude   []string           `yaml:"exclude"`
	Rules     map[string]RuleCfg `yaml:"rules"`
	RulesDir  string             `yaml:"rules-dir"`
	Overrides []Override         `yaml:"overrides"`
}

// Override applies rule settings to files matching glob patterns.
type Override struct {
	Files []string           `yaml:"files"`
	Rules map[string]RuleCfg `yaml:"rules"`
}

// RuleCfg is a YAML union: can be bool (enable/disable) or
// map[string]any (settings).
type RuleCfg struct {
	Enabled  bool
	Settings map[string]any
}

// UnmarshalYAML implements custom YAML unmarshalling for RuleCfg.
// It handles three forms:
//   - false -> Enabled=false, Settings=nil
//   - true  -> Enabled=true,  Settings=nil
//   - {key: val, ...} -> Enabled=true, Settings={key: val, ...}
func (r *RuleCfg) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var b bool
		if err := value.Decode(&b); err == nil {
			r.Enabled = b
			r.Settings = nil
			return nil
		}
	}

	if value.Kind == yaml.MappingNode {
		var m map[string]any
		if err := value.Decode(&m); err != nil {
			return fmt.Errorf("invalid rule config: %w", err)
		}
		r.Enabled = true
		r.Settings = m
		return nil
	}

	return fmt.Errorf("rule config must be a bool or a mapping, got %v", value.Kind)
}

// MarshalYAML renders a RuleCfg back into its compact union form.
func (r RuleCfg) MarshalYAML() (any, error) {
	if r.Settings != nil {
		return r.Settings, nil
	}
	return r.Enabled, nil
}

// Defaults returns a Config with every built-in rule enabled with
// default settings and the standard marker, include and exclude sets.
func Defaults() *Config {
	all := rule.All()
	rules := make(map[string]RuleCfg, len(all))
	for _, r := range all {
		rules[r.Name()] = RuleCfg{Enabled: true}
	}
	return &Config{
		Marker:  DefaultMarker,
		Include: append([]string(nil), DefaultInclude...),
		Exclude: append([]string(nil), DefaultExclude...),
		Rules:   rules,
	}
}

// DumpDefaults returns a Config with all registered rules enabled and
// their default settings populated, for `archlint init`.
func DumpDefaults() *Config {
	cfg := Defaults()
	for _, r := range rule.All() {
		if c, ok := r.(rule.Configurable); ok {
			cfg.Rules[r.Name()] = RuleCfg{Enabled: true, Settings: c.DefaultSettings()}
		}
	}
	return cfg
}
