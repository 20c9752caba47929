package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/broilr/pkg/domain"
)

// Login verifies credentials with the backend and remembers the user.
// Offline, any password is accepted.
func Login(ctx context.Context, rt *Runtime, username, password string, w io.Writer) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if !rt.Config.Backend.Offline {
		if err := rt.Backend.Login(ctx, username, password); err != nil {
			return err
		}
	}
	if err := rt.Identity.Save(ctx, username); err != nil {
		return fmt.Errorf("failed to remember user: %w", err)
	}
	printSystemMessage(w, "Logged in as %s.", username)
	return nil
}

// Signup creates an account and logs the user in.
func Signup(ctx context.Context, rt *Runtime, username, password string, w io.Writer) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if !rt.Config.Backend.Offline {
		if err := rt.Backend.Signup(ctx, username, password); err != nil {
			return err
		}
	}
	if err := rt.Identity.Save(ctx, username); err != nil {
		return fmt.Errorf("failed to remember user: %w", err)
	}
	printSystemMessage(w, "Account created. Logged in as %s.", username)
	return nil
}

// Logout forgets the stored user.
func Logout(ctx context.Context, rt *Runtime, w io.Writer) error {
	if err := rt.Identity.Clear(ctx); err != nil {
		return err
	}
	printSystemMessage(w, "Logged out.")
	return nil
}

// Whoami prints the stored user.
func Whoami(ctx context.Context, rt *Runtime, w io.Writer) error {
	username, err := rt.Identity.Load(ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		printSystemMessage(w, "Not logged in.")
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, username)
	return nil
}
