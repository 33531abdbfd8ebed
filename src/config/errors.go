// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"errors"
	"fmt"
)

// ErrConfigurationInvalid is matched by every error reporting a bad
// configuration value.
var ErrConfigurationInvalid = errors.New("config: invalid configuration")

// ConfigurationError reports a field whose value failed its check.
//
// Field is a dotted path such as "ca_configuration.email" or
// "certificate_configurations[1].valid_for".
type ConfigurationError struct {
	Field string
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: invalid value %#v for field %q", e.Value, e.Field)
}

// Is makes errors.Is(err, ErrConfigurationInvalid) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfigurationInvalid
}
