// Package testutil provides shared test helpers for databases, users and vaults.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/store"
	"github.com/starford/jotter/internal/vault"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jotter-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestUser inserts a user with an unusable password hash.
func TestUser(t *testing.T, db *store.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "!",
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

// TestVault creates a temporary directory backed by a vault.FS.
func TestVault(t *testing.T) (string, *vault.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := vault.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}
