// Package config loads the tool's own settings. This is distinct from the
// build descriptor: the descriptor configures images, this configures shipyard.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/baris/shipyard/internal/specfile"
)

// EnvPrefix scopes the environment variables read as overrides, e.g.
// SHIPYARD_LISTEN_ADDR.
const EnvPrefix = "SHIPYARD"

// Config holds the runtime settings of the tool.
type Config struct {
	// ListenAddr is the address the API server binds.
	ListenAddr string `mapstructure:"listen_addr"`
	// Descriptor is the default path of the build descriptor.
	Descriptor string `mapstructure:"descriptor"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration with precedence env > file > defaults. An empty
// path skips the file layer entirely.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("descriptor", specfile.DefaultName)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
