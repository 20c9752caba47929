package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/broilr/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in to the recipe backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		return cli.Login(cmd.Context(), rt, args[0], password, cmd.OutOrStdout())
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <username>",
	Short: "Create an account on the recipe backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		return cli.Signup(cmd.Context(), rt, args[0], password, cmd.OutOrStdout())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		return cli.Logout(cmd.Context(), rt, cmd.OutOrStdout())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		return cli.Whoami(cmd.Context(), rt, cmd.OutOrStdout())
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(logoutCmd, whoamiCmd)
}

// readPassword takes the password from the flag, a terminal prompt without
// echo, or the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("password") {
		return cmd.Flags().GetString("password")
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
