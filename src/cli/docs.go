// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface of the local certificate
// authority daemon.
//
// The root command runs the daemon, which keeps a self-signed root and the
// leaves it issues current, renewing whatever expired. Subcommands run a
// single validation cycle (check), print the state of the managed
// certificates as a table or JSON (status), validate a configuration file
// (validate) and print the version (version).
//
// The configuration file is taken from --config, falling back to the
// CONFIG_PATH environment variable.
package cli
