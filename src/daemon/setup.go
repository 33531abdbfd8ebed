// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package daemon

import (
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/H0llyW00dzZ/local-ca/src/config"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki/middleware"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki/native"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki/openssl"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

const (
	metricsNamespace = "local_ca"
	metricsSubsystem = "pki"
	tracerName       = "github.com/H0llyW00dzZ/local-ca"
)

// NewBackend returns the signing backend named by cfg.Backend. The openssl
// backend is rejected up front when its executable cannot be found.
func NewBackend(cfg *config.Config) (pki.Backend, error) {
	switch cfg.Backend {
	case config.BackendNative, "":
		return native.New(), nil
	case config.BackendOpenSSL:
		b := openssl.New(openssl.WithBinary(cfg.OpenSSL.Binary))
		if err := b.Available(); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrConfigurationInvalid, cfg.Backend)
	}
}

// Setup wires a Daemon from cfg. Backend calls are logged, counted and
// traced with the global OpenTelemetry tracer provider.
func Setup(cfg *config.Config, log logger.Logger) (*Daemon, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}

	m := MakeMetrics(metricsNamespace, metricsSubsystem)
	backend = middleware.Logging(backend, log)
	backend = middleware.Metrics(backend, m.Calls, m.Latency)
	backend = middleware.Tracing(backend, otel.Tracer(tracerName))

	engine := pki.NewEngine(backend,
		pki.WithLogger(log),
		pki.WithRenewBefore(cfg.RenewBefore.Std()),
		pki.WithBaseConfig(cfg.OpenSSL.BaseConfig),
	)
	return New(cfg, engine, log, WithMetrics(m))
}
