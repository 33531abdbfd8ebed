// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/local-ca/src/config"
	"github.com/H0llyW00dzZ/local-ca/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

// options holds the flag values shared by the commands.
type options struct {
	configFile string
	jsonOutput bool
	// stderr is where daemon logs are mirrored besides the log file.
	stderr io.Writer
}

// Execute runs the root command with the process arguments.
//
// log receives user-facing messages of the CLI itself; daemon logs go to
// the configured log file and stderr.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewRootCommand(version, log).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the daemon.
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	opts := &options{stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName(),
		Short:         "Local certificate authority daemon",
		Long:          "Keeps a self-signed root certificate and the certificates it issues valid, renewing them when they expire.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		fmt.Sprintf("path to the configuration file (default: $%s)", config.EnvConfigPath))

	rootCmd.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts, log),
		newStatusCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(version),
	)
	return rootCmd
}

// prepare loads the configuration and builds the daemon logger from it.
// The returned closer releases the log file.
func prepare(opts *options) (*config.Config, logger.Logger, io.Closer, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	log, closer, err := daemonLogger(cfg, opts.stderr)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Source == "" {
		log.Warnf("Failed to retrieve environmental variable %q. The default configuration will be used.", config.EnvConfigPath)
	}
	return cfg, log, closer, nil
}

// daemonLogger builds the logger configured in cfg, writing to the log
// file and to stderr.
func daemonLogger(cfg *config.Config, stderr io.Writer) (logger.Logger, io.Closer, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	sink, err := logger.OpenFileSink(cfg.Log.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return logger.New(cfg.Log.Format, level, sink, stderr), sink, nil
}
