// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultName is the name reported when os.Args carries no program name.
const DefaultName = "local-ca"

// ErrBinaryNotFound indicates that an external program could not be located
// or is not executable.
var ErrBinaryNotFound = errors.New("posix: binary not found")

// GetExecutableName returns the executable name without extension, cross-platform compatible.
//
// Behavior:
//   - Linux/macOS: "local-ca" from "/usr/local/bin/local-ca"
//   - Windows: "local-ca" from "C:\bin\local-ca.exe"
//   - Fallback: [DefaultName] if os.Args[0] is unavailable
func GetExecutableName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return DefaultName
	}

	name := filepath.Base(os.Args[0])

	// Windows-style path seen on a Unix host, or the other way around.
	if strings.Contains(name, "\\") || (strings.Contains(name, "/") && !strings.Contains(name, string(filepath.Separator))) {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	return strings.TrimSuffix(name, ".exe")
}

// LookupBinary resolves name to an executable path.
//
// Names containing a path separator are checked in place; bare names are
// searched in PATH. The returned error wraps [ErrBinaryNotFound].
func LookupBinary(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrBinaryNotFound)
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBinaryNotFound, name, err)
	}

	return path, nil
}
