package main

import (
	"fmt"

	"github.com/aretw0/broilr/internal/presentation/graph"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the conversation flow visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the conversation stages and their transitions.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(domain.Stages, domain.StageTransitions, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
