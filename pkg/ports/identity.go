package ports

import "context"

// IdentityStore keeps the logged-in username across restarts.
// It is the only client-side state that survives a reload.
type IdentityStore interface {
	// Load returns the stored username, or domain.ErrNotLoggedIn.
	Load(ctx context.Context) (string, error)

	// Save stores the username, replacing any previous one.
	Save(ctx context.Context, username string) error

	// Clear forgets the username. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
