package main

import (
	"github.com/aretw0/broilr/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"run"},
	Short:   "Start a cooking conversation in the terminal",
	Long: `Starts an interactive conversation for the logged-in user.
Type 'clear' to start over, 'exit' or 'quit' to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		quiet, _ := cmd.Flags().GetBool("quiet")
		voice, _ := cmd.Flags().GetBool("voice")
		debug, _ := cmd.Flags().GetBool("debug")

		return cli.RunChat(cmd.Context(), rt, cli.ChatOptions{
			JSON:   jsonMode,
			Plain:  plain,
			Quiet:  quiet,
			Debug:  debug,
			Voice:  voice,
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("json", false, "Read and write JSON lines instead of text")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	chatCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and completion messages")
	chatCmd.Flags().Bool("voice", false, "Request voice input (served by 'broilr serve')")
}
