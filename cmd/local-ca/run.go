// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/H0llyW00dzZ/local-ca/src/cli"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
	verpkg "github.com/H0llyW00dzZ/local-ca/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	// Once the first signal has cancelled ctx, stop swallowing signals so
	// a second one can be observed.
	again := func() <-chan os.Signal {
		stop()
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		return ch
	}

	if code := wait(ctx, done, again, log); code != 0 {
		os.Exit(code)
	}
}

// wait blocks until the command returns and maps the outcome to an exit
// code. After an interrupt it keeps waiting, so the operation in flight and
// its cleanup can finish; only a second signal ends the wait early.
func wait(ctx context.Context, done <-chan error, again func() <-chan os.Signal, log logger.Logger) int {
	select {
	case err := <-done:
		if ctx.Err() != nil {
			return 130
		}
		if err != nil {
			log.Printf("Error: %v", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	select {
	case <-done:
	case <-again():
		log.Printf("Interrupted again, exiting without waiting for cleanup.")
	}
	return 130 // Standard exit code for SIGINT
}
