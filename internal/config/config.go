// Package config loads the gostruct CLI configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the CLI configuration.
type Config struct {
	// Schema is the YAML schema file declaring the struct and enum types.
	Schema   string `mapstructure:"schema"`
	LogLevel string `mapstructure:"log_level"`
	Lang     string `mapstructure:"lang"`
	Pretty   bool   `mapstructure:"pretty"`
	// Strict turns rejected property redefinitions into schema errors.
	Strict bool `mapstructure:"strict"`
}

// Load reads gostruct.yaml from dir (optional), GOSTRUCT_* environment
// variables and the given flags, in increasing precedence.
func Load(dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("schema", "schema.yaml")
	v.SetDefault("log_level", "warn")
	v.SetDefault("lang", "en")
	v.SetDefault("pretty", false)
	v.SetDefault("strict", false)

	v.SetConfigName("gostruct")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("GOSTRUCT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlags maps dashed flag names onto the underscored config keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		switch key {
		case "schema", "log_level", "lang", "pretty", "strict":
			err = v.BindPFlag(key, f)
		}
	})
	return err
}

func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", cfg.LogLevel)
	}
	if cfg.Schema == "" {
		return fmt.Errorf("schema file is required")
	}
	return nil
}
