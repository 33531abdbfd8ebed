// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// local-ca is a small certificate authority daemon for development and
// internal networks. It keeps a self-signed root certificate and the
// certificates it issues valid, checking them periodically and renewing
// whatever has expired.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/local-ca/cmd/local-ca@latest
//
// # Usage
//
//	local-ca [command] [-c CONFIG_FILE]
//
// # Commands
//
//	run       Run the daemon until interrupted (default)
//	check     Run a single validation cycle and exit
//	status    Show the managed certificates (--json for JSON)
//	validate  Validate the configuration file
//	version   Print the version
//
// # Configuration
//
// The configuration file (YAML, JSON or TOML) is given with -c or the
// CONFIG_PATH environment variable:
//
//	base_folder: /data
//	use_subfolders: true
//	sleep_time: 10 minutes
//	ca_configuration:
//	  common_name: Local Root
//	  email: pki@example.com
//	  valid_for: 3650 days
//	certificate_configurations:
//	  - common_name: "*.example.test"
//	    email: ops@example.com
//	    valid_for: 365 days
//
// Artifacts are written below <base_folder>/certificates. Logs are
// appended to ./local.log, or LOG_FILE_PATH when set, and mirrored to
// stderr.
//
// # Exit codes
//
// The daemon exits 0 when stopped, 1 on any failure and 130 when
// interrupted by a signal before a command finished.
package main
