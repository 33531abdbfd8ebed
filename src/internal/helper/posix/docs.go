// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// Key functions:
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//   - LookupBinary: Resolves an external toolkit (such as openssl) to an executable path
//
// # Usage Examples
//
//	rootCmd := &cobra.Command{
//	    Use:   posix.GetExecutableName(),
//	    Short: "Local certificate authority daemon",
//	}
//
//	bin, err := posix.LookupBinary("openssl")
//	if errors.Is(err, posix.ErrBinaryNotFound) {
//	    // toolkit not installed
//	}
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
