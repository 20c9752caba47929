// Package file keeps the logged-in identity in a JSON file on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
)

// DefaultPath returns the identity file under the user's config directory,
// falling back to ".broilr/identity.json" in the working directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".broilr", "identity.json")
	}
	return filepath.Join(dir, "broilr", "identity.json")
}

type record struct {
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// IdentityStore implements ports.IdentityStore on a single JSON file.
type IdentityStore struct {
	Path string
}

// NewIdentityStore creates a store at path. An empty path uses DefaultPath.
func NewIdentityStore(path string) *IdentityStore {
	if path == "" {
		path = DefaultPath()
	}
	return &IdentityStore{Path: path}
}

// Load reads the username from the file.
func (s *IdentityStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrNotLoggedIn
		}
		return "", fmt.Errorf("failed to read identity file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	if rec.Username == "" {
		return "", domain.ErrNotLoggedIn
	}
	return rec.Username, nil
}

// Save writes the username atomically: temp file, fsync, rename.
func (s *IdentityStore) Save(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to ensure identity directory: %w", err)
	}

	data, err := json.MarshalIndent(record{Username: username, LoggedInAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-identity-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows cannot rename over an existing file.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to replace identity file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Clear removes the file.
func (s *IdentityStore) Clear(ctx context.Context) error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete identity file: %w", err)
	}
	return nil
}
