// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides abstraction and implementation for logging operations.
// It defines the Logger interface and provides two implementations: DaemonLogger
// for human-readable timestamped lines and JSONLogger for one-object-per-line
// structured output. Both fan out to several sinks at once (typically stderr
// and an append-only log file), are thread-safe, and JSONLogger uses buffer
// pooling for efficient memory usage.
package logger
