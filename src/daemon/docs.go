// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package daemon orchestrates the certificate lifecycle.
//
// A [Daemon] owns one root authority and the leaves it issues. Each cycle
// checks the root first, then every leaf in configuration order, stopping
// at the first failure. [Daemon.Run] repeats cycles until its context is
// cancelled, optionally serving Prometheus metrics alongside.
//
// [Setup] wires a daemon from a loaded configuration: it picks the signing
// backend, wraps it with logging, metrics and tracing middleware, and
// builds the renewal engine.
package daemon
