package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const defaultLogLevel = "warn"

// cliConfig holds CLI settings loaded from file and environment.
// Precedence: flags > env (SDV_*) > config file > defaults.
type cliConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

func loadCLIConfig(cfgFile string) (*cliConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SDV")
	v.AutomaticEnv()

	v.SetDefault("log_level", defaultLogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sensor-data-viewer"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			// Missing config file is fine, anything else is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
