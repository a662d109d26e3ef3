//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/jotter/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS ideas_fts USING fts5(
			id UNINDEXED,
			user_id UNINDEXED,
			title,
			description,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, i *models.Idea) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ideas_fts WHERE id = ?`, i.ID); err != nil {
		return fmt.Errorf("store: clear fts: %w", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ideas_fts (id, user_id, title, description, tags) VALUES (?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Title, i.Description, strings.Join(i.Tags, " "))
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ideas_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete fts: %w", err)
	}
	return nil
}

// Search runs an FTS5 phrase query over the owner's ideas and returns hits
// with highlighted snippets.
func (db *DB) Search(ctx context.Context, owner, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	phrase := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id,
		       title,
		       snippet(ideas_fts, 3, '<b>', '</b>', '...', 32)
		FROM ideas_fts
		WHERE ideas_fts MATCH ? AND user_id = ?
		ORDER BY rank
		LIMIT ?
	`, phrase, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	out := []SearchHit{}
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.IdeaID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
