// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RenderTable renders entries as a markdown table.
//
// It lists each managed certificate with its role, subject, issuer,
// expiry, key size, status and chain verification result.
func RenderTable(entries []Entry) string {
	if len(entries) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	headers := []string{"🔢 #", "📛 Name", "🏷️ Role", "🏢 Issuer", "📅 Valid Until", "🔐 Key Size", "✅ Status", "🔗 Chain"}
	table.Header(headers)

	// A Caser is stateful; one per call.
	titleCase := cases.Title(language.English)
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		validUntil, keySize := "-", "-"
		if !e.NotAfter.IsZero() {
			validUntil = e.NotAfter.UTC().Format("2006-01-02 15:04 MST")
		}
		if e.KeySize > 0 {
			keySize = fmt.Sprintf("%d-bit %s", e.KeySize, e.PublicKeyAlgorithm)
		}
		chain := e.Chain
		if chain == "" {
			chain = "-"
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Name,
			e.Role,
			orDash(e.Issuer),
			validUntil,
			keySize,
			titleCase.String(string(e.Status)),
			chain,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// RenderJSON converts entries to indented JSON stamped with the inspection time.
func RenderJSON(entries []Entry, at time.Time) ([]byte, error) {
	type report struct {
		Timestamp    string  `json:"timestamp"`
		Count        int     `json:"count"`
		Certificates []Entry `json:"certificates"`
	}

	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(report{
		Timestamp:    at.UTC().Format(time.RFC3339),
		Count:        len(entries),
		Certificates: entries,
	}, "", "  ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
