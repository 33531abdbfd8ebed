// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/local-ca/src/config"
	"github.com/H0llyW00dzZ/local-ca/src/daemon"
	x509chain "github.com/H0llyW00dzZ/local-ca/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon until interrupted (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, opts)
		},
	}
}

func runDaemon(cmd *cobra.Command, opts *options) error {
	cfg, log, closer, err := prepare(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	d, err := daemon.Setup(cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		return err
	}
	if err := d.Run(cmd.Context()); err != nil {
		log.Errorf("%v", err)
		return err
	}
	return nil
}

func newCheckCmd(opts *options, out logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single validation cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, closer, err := prepare(opts)
			if err != nil {
				return err
			}
			defer closer.Close()

			d, err := daemon.Setup(cfg, log)
			if err != nil {
				return err
			}
			reports, err := d.Cycle(cmd.Context())
			for _, r := range reports {
				out.Printf("%s: %s (valid until %s)", r.Name, r.State, r.NotAfter.UTC().Format(time.RFC3339))
			}
			if err != nil {
				log.Errorf("%v", err)
				return err
			}
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the managed certificates without changing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}

			// Status only reads certificates; no engine is needed.
			d, err := daemon.New(cfg, nil, logger.NewSilentLogger())
			if err != nil {
				return err
			}
			entries, err := d.Status(cmd.Context())
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				data, err := x509chain.RenderJSON(entries, time.Now())
				if err != nil {
					return err
				}
				return logJSONCmd(cmd, data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), x509chain.RenderTable(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				logErrorCmd(cmd, err)
				return err
			}

			source := cfg.Source
			if source == "" {
				source = "default configuration"
			}
			logOKCmd(cmd, fmt.Sprintf("%s is valid: root %q and %d certificate(s)", source, cfg.CA.CommonName, len(cfg.Certificates)))
			return nil
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
