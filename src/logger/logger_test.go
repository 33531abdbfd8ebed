// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

func TestDaemonLogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Printf",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewDaemonLogger(logger.LevelInfo, &buf)

				log.Printf("Checking certificate %s...", "ca.crt")

				assert.Contains(t, buf.String(), "INFO  Checking certificate ca.crt...")
			},
		},
		{
			name: "Level filtering",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewDaemonLogger(logger.LevelWarn, &buf)

				log.Debugf("debug")
				log.Infof("info")
				log.Warnf("warn %d", 1)
				log.Errorf("error %d", 2)

				out := buf.String()
				assert.NotContains(t, out, "debug")
				assert.NotContains(t, out, "info")
				assert.Contains(t, out, "WARN  warn 1")
				assert.Contains(t, out, "ERROR error 2")
			},
		},
		{
			name: "Fan out to every sink",
			testFunc: func(t *testing.T) {
				var stderr, file bytes.Buffer
				log := logger.NewDaemonLogger(logger.LevelInfo, &stderr, &file)

				log.Println("Daemon started.")

				assert.Contains(t, stderr.String(), "Daemon started.")
				assert.Contains(t, file.String(), "Daemon started.")
			},
		},
		{
			name: "SetOutput",
			testFunc: func(t *testing.T) {
				var buf1, buf2 bytes.Buffer
				log := logger.NewDaemonLogger(logger.LevelInfo, &buf1)

				log.Println("first")
				log.SetOutput(&buf2)
				log.Println("second")

				assert.Contains(t, buf1.String(), "first")
				assert.Contains(t, buf2.String(), "second")
				assert.NotContains(t, buf1.String(), "second")
			},
		},
		{
			name: "CLI logger has no timestamp",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Println("hello")

				assert.Equal(t, "INFO  hello\n", buf.String())
			},
		},
		{
			name: "ConcurrentUsage",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewDaemonLogger(logger.LevelInfo, &buf)

				const numGoroutines = 50
				const messagesPerGoroutine = 10

				var wg sync.WaitGroup
				wg.Add(numGoroutines)
				for i := range numGoroutines {
					go func(id int) {
						defer wg.Done()
						for j := range messagesPerGoroutine {
							log.Printf("goroutine %d message %d", id, j)
						}
					}(i)
				}
				wg.Wait()

				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				assert.Len(t, lines, numGoroutines*messagesPerGoroutine)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestJSONLogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Silent",
			testFunc: func(t *testing.T) {
				log := logger.NewSilentLogger()
				var buf bytes.Buffer
				log.SetOutput(&buf)

				log.Printf("test message: %s", "hello")
				log.Errorf("boom")

				assert.Equal(t, 0, buf.Len(), "expected no output in silent mode")
			},
		},
		{
			name: "Levels are lower case",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(logger.LevelDebug, &buf)

				log.Warnf("Certificate %s is invalid", "www.crt")

				var e map[string]any
				require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &e))
				assert.Equal(t, "warn", e["level"])
				assert.Equal(t, "Certificate www.crt is invalid", e["message"])
				assert.NotEmpty(t, e["time"])
			},
		},
		{
			name: "One object per line",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(logger.LevelInfo, &buf)

				log.Printf("message %d", 1)
				log.Println("message", 2)
				log.Debugf("filtered")

				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				require.Len(t, lines, 2)
				for i, line := range lines {
					var e map[string]any
					assert.NoError(t, json.Unmarshal([]byte(line), &e), "line %d", i+1)
				}
			},
		},
		{
			name: "SetOutput nil",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(logger.LevelInfo, &buf)

				log.Println("before")
				log.SetOutput(nil)
				log.Println("after")

				assert.Contains(t, buf.String(), "before")
				assert.NotContains(t, buf.String(), "after")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logger.Level
		wantErr bool
	}{
		{input: "debug", want: logger.LevelDebug},
		{input: "INFO", want: logger.LevelInfo},
		{input: "", want: logger.LevelInfo},
		{input: "warning", want: logger.LevelWarn},
		{input: " warn ", want: logger.LevelWarn},
		{input: "error", want: logger.LevelError},
		{input: "fatal", want: logger.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, logger.ErrUnknownLevel)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAndFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "local.log")

	sink, err := logger.OpenFileSink(path)
	require.NoError(t, err)

	log := logger.New("json", logger.LevelInfo, sink)
	_, isJSON := log.(*logger.JSONLogger)
	assert.True(t, isJSON)

	log.Infof("first")
	require.NoError(t, sink.Close())

	// Reopening appends rather than truncating.
	sink, err = logger.OpenFileSink(path)
	require.NoError(t, err)
	text := logger.New("text", logger.LevelInfo, sink)
	text.Infof("second")
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"first"`)
	assert.Contains(t, string(data), "INFO  second")
}
