package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/broilr"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of broilr",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "broilr version %s\n", strings.TrimSpace(broilr.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
