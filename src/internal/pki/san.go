// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pki

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/H0llyW00dzZ/local-ca/src/internal/helper/gc"
)

// DefaultBaseConfig is the system openssl configuration a SAN section is appended to.
const DefaultBaseConfig = "/etc/ssl/openssl.cnf"

// SANSection is the config section name referenced by -reqexts/-extensions.
const SANSection = "SAN"

// WriteSANConfig writes an extension config to path: the contents of
// baseConfig followed by a [SAN] section listing names as DNS entries.
// A missing baseConfig contributes nothing.
func WriteSANConfig(path, baseConfig string, names []string) error {
	return gc.With(func(buf gc.Buffer) error {
		if baseConfig != "" {
			if err := appendFile(buf, baseConfig); err != nil {
				return err
			}
		}

		buf.WriteString("\n[" + SANSection + "]\nsubjectAltName=\"")
		for i, name := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("DNS:")
			buf.WriteString(name)
		}
		buf.WriteString("\"\n")

		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write SAN config: %w", err)
		}
		return nil
	})
}

func appendFile(buf gc.Buffer, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read base config: %w", err)
	}
	defer f.Close()

	if _, err := buf.ReadFrom(f); err != nil {
		return fmt.Errorf("read base config: %w", err)
	}
	return nil
}
