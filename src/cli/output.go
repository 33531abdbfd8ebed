// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

func logJSONCmd(cmd *cobra.Command, data []byte) error {
	pj, err := prettyjson.Format(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pj))
	return nil
}

func logErrorCmd(cmd *cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "error: ")
	fmt.Fprintln(cmd.ErrOrStderr(), color.RedString(err.Error()))
}

func logOKCmd(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("ok"), msg)
}
