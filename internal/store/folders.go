package store

import (
	"context"
	"fmt"

	"github.com/starford/jotter/internal/models"
)

// FolderCount is a folder together with the number of ideas filed in it.
type FolderCount struct {
	models.Folder
	Ideas int
}

// InsertFolder stores a new folder.
func (db *DB) InsertFolder(ctx context.Context, f *models.Folder) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.UserID, f.Name, f.CreatedAt.UTC())
	if err != nil {
		return classify("insert folder", err)
	}
	return nil
}

// GetFolder returns the owner's folder by id.
func (db *DB) GetFolder(ctx context.Context, owner, id string) (*models.Folder, error) {
	var f models.Folder
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM folders WHERE id = ? AND user_id = ?`, id, owner).
		Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt)
	if err != nil {
		return nil, classify("get folder", err)
	}
	return &f, nil
}

// FolderByName returns the owner's oldest folder with exactly this name.
func (db *DB) FolderByName(ctx context.Context, owner, name string) (*models.Folder, error) {
	var f models.Folder
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at FROM folders
		WHERE user_id = ? AND name = ?
		ORDER BY created_at, id
		LIMIT 1
	`, owner, name).Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt)
	if err != nil {
		return nil, classify("folder by name", err)
	}
	return &f, nil
}

// ListFolders returns the owner's folders ordered by name, each with its idea count.
func (db *DB) ListFolders(ctx context.Context, owner string) ([]FolderCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.name, f.created_at, COUNT(i.id)
		FROM folders f
		LEFT JOIN ideas i ON i.folder_id = f.id
		WHERE f.user_id = ?
		GROUP BY f.id
		ORDER BY f.name COLLATE NOCASE, f.created_at
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list folders: %w", err)
	}
	defer rows.Close()

	out := []FolderCount{}
	for rows.Next() {
		var fc FolderCount
		if err := rows.Scan(&fc.ID, &fc.UserID, &fc.Name, &fc.CreatedAt, &fc.Ideas); err != nil {
			return nil, fmt.Errorf("store: scan folder: %w", err)
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// RenameFolder changes a folder's name.
func (db *DB) RenameFolder(ctx context.Context, owner, id, name string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE folders SET name = ? WHERE id = ? AND user_id = ?`, name, id, owner)
	if err != nil {
		return classify("rename folder", err)
	}
	return affectedOne("rename folder", res)
}

// DeleteFolder removes a folder. Its ideas are kept and become unfoldered.
func (db *DB) DeleteFolder(ctx context.Context, owner, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM folders WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return classify("delete folder", err)
	}
	return affectedOne("delete folder", res)
}
