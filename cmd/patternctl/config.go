package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds patternctl settings.
type Config struct {
	DB       string `koanf:"db"`
	Category string `koanf:"category"`
	Limit    int    `koanf:"limit"`
}

const configFileName = "patternctl.yaml"

// defaultDBPath places the catalog under the user config directory.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "patterns.db"
	}
	return filepath.Join(dir, "patternctl", "patterns.db")
}

// loadConfig layers configuration sources, lowest to highest
// precedence: defaults, config file, PATTERNCTL_ environment
// variables, explicitly set flags.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"db":       defaultDBPath(),
		"category": "general",
		"limit":    20,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(configFileName); err == nil {
			cfgFile = configFileName
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider("PATTERNCTL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PATTERNCTL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
