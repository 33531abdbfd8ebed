// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the daemon configuration.
//
// A configuration file is YAML, JSON or TOML, chosen by extension, and is
// located through the -c flag or the CONFIG_PATH environment variable:
//
//	base_folder: /data
//	use_subfolders: true
//	sleep_time: 10 minutes
//	renew_before: 7 days
//	backend: native
//	ca_configuration:
//	  common_name: Local Root
//	  email: pki@example.com
//	  valid_for: 3650 days
//	certificate_configurations:
//	  - common_name: example.com
//	    email: ops@example.com
//	    valid_for: 365 days
//
// Loading runs in stages. Defaults are applied first. The file is decoded
// into a generic document and checked against an embedded JSON schema. A
// field manager then extracts and checks each known key; the first rejected
// value is reported as a [*ConfigurationError]. Finally environment
// variables prefixed with LOCAL_ (plus LOG_FILE_PATH) override the result.
//
// Every certificate entry requires valid_for, a day count such as "365
// days" or "30 d", and an email address.
package config
