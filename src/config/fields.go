// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/H0llyW00dzZ/local-ca/src/internal/duration"
)

// extractor converts a raw document value into its typed form. A value it
// cannot convert yields nil, which the paired check then rejects.
type extractor func(path string, v any) (any, error)

// check accepts or rejects an extracted value.
type check func(v any) bool

// field binds a top-level key to its extractor, check and destination.
type field struct {
	name    string
	extract extractor
	check   check
	assign  func(cfg *Config, v any)
}

// loader applies a decoded document to a Config one known field at a time.
// Keys absent from the document keep their current value.
type loader struct {
	fields []field
}

var (
	alwaysAccept check = func(any) bool { return true }
	notNil       check = func(v any) bool { return v != nil }
)

func boolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

func str(v any) bool {
	_, ok := v.(string)
	return ok
}

func email(v any) bool {
	s, ok := v.(string)
	return ok && AcceptEmail(s)
}

func identity(_ string, v any) (any, error) { return v, nil }

func durationValue(_ string, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, nil
	}
	d, ok := duration.Parse(s)
	if !ok {
		return nil, nil
	}
	return d, nil
}

func validityDays(_ string, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, nil
	}
	days, ok := AcceptValidity(s)
	if !ok {
		return nil, nil
	}
	return days, nil
}

func caSpec(path string, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ConfigurationError{Field: path, Value: v}
	}
	return parseSpec(path, m)
}

func certificateSpecs(path string, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &ConfigurationError{Field: path, Value: v}
	}

	specs := make([]CertificateSpec, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ConfigurationError{Field: itemPath, Value: item}
		}
		spec, err := parseSpec(itemPath, m)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// section decodes a nested table into a fresh copy of the destination type.
func section[T any](path string, v any) (any, error) {
	var out T
	if err := decodeInto(v, &out); err != nil {
		return nil, &ConfigurationError{Field: path, Value: v}
	}
	return out, nil
}

func newLoader() *loader {
	return &loader{fields: []field{
		{
			name:    "base_folder",
			extract: identity,
			check:   str,
			assign:  func(c *Config, v any) { c.BaseFolder = v.(string) },
		},
		{
			name:    "use_subfolders",
			extract: identity,
			check:   boolean,
			assign:  func(c *Config, v any) { c.UseSubfolders = v.(bool) },
		},
		{
			name:    "sleep_time",
			extract: durationValue,
			check:   notNil,
			assign:  func(c *Config, v any) { c.SleepTime = v.(duration.Duration) },
		},
		{
			name:    "renew_before",
			extract: durationValue,
			check:   notNil,
			assign:  func(c *Config, v any) { c.RenewBefore = v.(duration.Duration) },
		},
		{
			name:    "backend",
			extract: identity,
			check:   oneOf(BackendNative, BackendOpenSSL),
			assign:  func(c *Config, v any) { c.Backend = v.(string) },
		},
		{
			name:    "openssl",
			extract: section[OpenSSLConfig],
			check:   alwaysAccept,
			assign:  func(c *Config, v any) { mergeOpenSSL(&c.OpenSSL, v.(OpenSSLConfig)) },
		},
		{
			name:    "ca_configuration",
			extract: caSpec,
			check:   alwaysAccept,
			assign:  func(c *Config, v any) { c.CA = v.(CertificateSpec) },
		},
		{
			name:    "certificate_configurations",
			extract: certificateSpecs,
			check:   alwaysAccept,
			assign:  func(c *Config, v any) { c.Certificates = v.([]CertificateSpec) },
		},
		{
			name:    "log",
			extract: section[LogConfig],
			check:   alwaysAccept,
			assign:  func(c *Config, v any) { mergeLog(&c.Log, v.(LogConfig)) },
		},
		{
			name:    "metrics",
			extract: section[MetricsConfig],
			check:   alwaysAccept,
			assign:  func(c *Config, v any) { c.Metrics = v.(MetricsConfig) },
		},
	}}
}

// apply runs every field present in raw through its extractor and check and
// stores the result. The first rejected field aborts loading.
func (l *loader) apply(raw map[string]any, cfg *Config) error {
	for _, f := range l.fields {
		value, present := raw[f.name]
		if !present {
			continue
		}

		extracted, err := extractField(f.name, value, f.extract, f.check)
		if err != nil {
			return err
		}
		f.assign(cfg, extracted)
	}
	return nil
}

func extractField(path string, value any, extract extractor, accept check) (any, error) {
	extracted, err := extract(path, value)
	if err != nil {
		return nil, err
	}
	if !accept(extracted) {
		return nil, &ConfigurationError{Field: path, Value: value}
	}
	return extracted, nil
}

// parseSpec requires valid_for and email, then decodes the spec.
func parseSpec(path string, m map[string]any) (CertificateSpec, error) {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		fields[k] = v
	}

	days, err := extractField(path+".valid_for", m["valid_for"], validityDays, notNil)
	if err != nil {
		return CertificateSpec{}, err
	}
	fields["valid_for"] = days

	addr, err := extractField(path+".email", m["email"], identity, email)
	if err != nil {
		return CertificateSpec{}, err
	}
	fields["email"] = addr

	var spec CertificateSpec
	if err := decodeInto(fields, &spec); err != nil {
		return CertificateSpec{}, &ConfigurationError{Field: path, Value: m}
	}
	return spec, nil
}

func decodeInto(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func oneOf(values ...string) check {
	return func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, want := range values {
			if s == want {
				return true
			}
		}
		return false
	}
}

func mergeOpenSSL(dst *OpenSSLConfig, src OpenSSLConfig) {
	if src.Binary != "" {
		dst.Binary = src.Binary
	}
	if src.BaseConfig != "" {
		dst.BaseConfig = src.BaseConfig
	}
}

func mergeLog(dst *LogConfig, src LogConfig) {
	if src.FilePath != "" {
		dst.FilePath = src.FilePath
	}
	if src.Level != "" {
		dst.Level = src.Level
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
}
