// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package openssl is a signing backend that drives the openssl command
// line tool.
//
// Each operation runs one openssl subcommand:
//
//	genrsa <bits>
//	req -new -key K -subj S [-reqexts SAN -config CNF]
//	x509 -x509toreq -in C -signkey K
//	x509 -req -days N -in R -signkey K
//	x509 -req -days N -in R -CA C -CAkey K -CAserial SRL -CAcreateserial [-extensions SAN -extfile CNF]
//	x509 -noout -text -in C
//
// Results are read from the tool's standard output and written to the
// destination only once the command has exited successfully, so a failed
// run leaves no partial file. A binary that cannot be located or started is
// reported as [pki.ErrBackendUnavailable]; a non-zero exit status as
// [pki.ErrBackendFailed] carrying the tool's standard error.
package openssl
