//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/jotter/internal/models"
)

func initFTS(_ *sql.DB) error {
	// No FTS5: Search scans the ideas table with LIKE.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _ *models.Idea) error { return nil }

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a case-insensitive LIKE search over the owner's ideas.
func (db *DB) Search(ctx context.Context, owner, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, substr(description, 1, 200)
		FROM ideas
		WHERE user_id = ?
		  AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')
		ORDER BY created_at DESC
		LIMIT ?
	`, owner, like, like, like, limit)
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
