// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// EnvPrefix prefixes every environment override except LOG_FILE_PATH.
const EnvPrefix = "LOCAL_"

// legacyEnv holds overrides whose names predate the LOCAL_ prefix.
type legacyEnv struct {
	LogFilePath string `env:"LOG_FILE_PATH"`
}

// applyEnv overlays environment variables onto cfg. Unset variables leave
// the current value untouched.
func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}

	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	if legacy.LogFilePath != "" {
		cfg.Log.FilePath = legacy.LogFilePath
	}
	return nil
}
