package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/jotter/internal/models"
)

// IdeaFilter narrows ListIdeas and CountIdeas. FolderID and Unfoldered are
// mutually exclusive; when both are zero every idea of the owner matches.
type IdeaFilter struct {
	FolderID   string
	Unfoldered bool
	Ascending  bool
	Limit      int
	Offset     int
}

// SearchHit is one full-text search result.
type SearchHit struct {
	IdeaID  string
	Title   string
	Snippet string
}

const ideaColumns = `id, user_id, title, description, tags, folder_id, created_at, updated_at`

// InsertIdea stores a new idea and its search entry.
func (db *DB) InsertIdea(ctx context.Context, i *models.Idea) error {
	tagsJSON, err := encodeTags(i.Tags)
	if err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ideas (`+ideaColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, i.ID, i.UserID, i.Title, i.Description, tagsJSON, nullable(i.FolderID),
			i.CreatedAt.UTC(), i.UpdatedAt.UTC())
		if err != nil {
			return classify("insert idea", err)
		}
		return ftsUpsert(ctx, tx, i)
	})
}

// UpdateIdea overwrites the mutable fields of an idea.
func (db *DB) UpdateIdea(ctx context.Context, i *models.Idea) error {
	tagsJSON, err := encodeTags(i.Tags)
	if err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE ideas SET
				title       = ?,
				description = ?,
				tags        = ?,
				folder_id   = ?,
				updated_at  = ?
			WHERE id = ? AND user_id = ?
		`, i.Title, i.Description, tagsJSON, nullable(i.FolderID), i.UpdatedAt.UTC(), i.ID, i.UserID)
		if err != nil {
			return classify("update idea", err)
		}
		if err := affectedOne("update idea", res); err != nil {
			return err
		}
		return ftsUpsert(ctx, tx, i)
	})
}

// DeleteIdea removes an idea and its search entry.
func (db *DB) DeleteIdea(ctx context.Context, owner, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM ideas WHERE id = ? AND user_id = ?`, id, owner)
		if err != nil {
			return classify("delete idea", err)
		}
		if err := affectedOne("delete idea", res); err != nil {
			return err
		}
		return ftsDelete(ctx, tx, id)
	})
}

// GetIdea returns the owner's idea by id.
func (db *DB) GetIdea(ctx context.Context, owner, id string) (*models.Idea, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = ? AND user_id = ?`, id, owner)
	i, err := scanIdea(row)
	if err != nil {
		return nil, classify("get idea", err)
	}
	return i, nil
}

// ListIdeas returns one page of the owner's ideas ordered by creation time,
// plus the total number of ideas matching the filter.
func (db *DB) ListIdeas(ctx context.Context, owner string, f IdeaFilter) ([]models.Idea, int, error) {
	where, args := f.where(owner)

	total, err := db.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE ` + where +
		` ORDER BY created_at ` + order + `, id ` + order
	if f.Limit > 0 || f.Offset > 0 {
		// SQLite treats a negative LIMIT as unbounded.
		limit := f.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, f.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list ideas: %w", err)
	}
	defer rows.Close()

	out := []models.Idea{}
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: list ideas: %w", err)
		}
		out = append(out, *i)
	}
	return out, total, rows.Err()
}

// CountIdeas returns the number of the owner's ideas matching the filter.
// Ordering and paging fields are ignored.
func (db *DB) CountIdeas(ctx context.Context, owner string, f IdeaFilter) (int, error) {
	where, args := f.where(owner)
	return db.count(ctx, where, args)
}

func (db *DB) count(ctx context.Context, where string, args []any) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM ideas WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count ideas: %w", err)
	}
	return n, nil
}

func (f IdeaFilter) where(owner string) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{owner}
	switch {
	case f.Unfoldered:
		clauses = append(clauses, "folder_id IS NULL")
	case f.FolderID != "":
		clauses = append(clauses, "folder_id = ?")
		args = append(args, f.FolderID)
	}
	return strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanIdea decodes one ideas row. A tags column that is not a JSON string
// list is reported as an error rather than silently dropped.
func scanIdea(s rowScanner) (*models.Idea, error) {
	var (
		i        models.Idea
		tagsJSON string
		folderID sql.NullString
	)
	if err := s.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &tagsJSON, &folderID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &i.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of idea %s: %w", i.ID, err)
	}
	if i.Tags == nil {
		i.Tags = []string{}
	}
	if folderID.Valid {
		i.FolderID = &folderID.String
	}
	return &i, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("store: encode tags: %w", err)
	}
	return string(b), nil
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
