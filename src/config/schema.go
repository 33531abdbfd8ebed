// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaDocument []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaDocument))
})

// validateSchema checks the structure of a decoded document: value types of
// known keys and the shape of nested sections. Semantic checks such as
// durations and e-mail addresses are left to the field manager.
func validateSchema(raw map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("config: load schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("config: validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	return &ConfigurationError{Field: first.Field(), Value: first.Value()}
}
