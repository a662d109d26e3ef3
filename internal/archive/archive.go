// Package archive moves ideas between the database and Markdown files:
// full exports, single-file imports and a watched inbox directory.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"unicode"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/ideaservice"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/parser"
	"github.com/starford/jotter/internal/vault"
)

// failedDir receives inbox files that could not be imported.
const failedDir = "failed"

// Archiver reads and writes ideas as Markdown files in a vault.
type Archiver struct {
	ideas  *ideaservice.Service
	vault  vault.Provider
	logger *slog.Logger
}

// New creates an Archiver. A nil logger falls back to slog.Default.
func New(ideas *ideaservice.Service, v vault.Provider, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{ideas: ideas, vault: v, logger: logger}
}

// Export writes every idea owned by owner as <folder-slug>/<id>.md and
// returns the number of files written. Ideas without a folder go under
// "uncategorized".
func (a *Archiver) Export(ctx context.Context, owner string) (int, error) {
	page, err := a.ideas.ListIdeas(ctx, owner, ideaservice.ListOptions{Ascending: true})
	if err != nil {
		return 0, fmt.Errorf("archive: export: %w", err)
	}
	for i := range page.Items {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		d := &page.Items[i]
		data, err := parser.Render(document(d))
		if err != nil {
			return i, fmt.Errorf("archive: render %s: %w", d.ID, err)
		}
		if err := a.vault.Write(ExportPath(d), data); err != nil {
			return i, fmt.Errorf("archive: export: %w", err)
		}
	}
	a.logger.Info("archive: exported", slog.String("owner", owner), slog.Int("ideas", len(page.Items)))
	return len(page.Items), nil
}

// ExportPath is the vault path an idea is exported to.
func ExportPath(d *ideaservice.IdeaDetail) string {
	dir := models.UncategorizedID
	if d.InFolder() {
		if s := Slug(d.FolderName); s != "" {
			dir = s
		} else {
			dir = *d.FolderID
		}
	}
	return path.Join(dir, d.ID+".md")
}

func document(d *ideaservice.IdeaDetail) *parser.Document {
	doc := &parser.Document{
		Title:       d.Title,
		Description: d.Description,
		Tags:        d.Tags,
		Created:     d.CreatedAt,
	}
	if d.InFolder() {
		doc.Folder = d.FolderName
	}
	return doc
}

// Slug lower-cases name and collapses every run of characters that are not
// letters or digits into a single '-'.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// Import creates an idea for owner from the Markdown file at path. The
// frontmatter folder is looked up by name and created when missing.
func (a *Archiver) Import(ctx context.Context, owner, path string) (*ideaservice.IdeaDetail, error) {
	data, err := a.vault.Read(path)
	if err != nil {
		return nil, fmt.Errorf("archive: import: %w", err)
	}
	return a.ImportData(ctx, owner, data)
}

// ImportData creates an idea for owner from raw Markdown.
func (a *Archiver) ImportData(ctx context.Context, owner string, data []byte) (*ideaservice.IdeaDetail, error) {
	doc, err := parser.Parse(data)
	if err != nil {
		return nil, invalid(err)
	}
	in := ideaservice.IdeaInput{
		Title:       doc.Title,
		Description: doc.Description,
		Tags:        doc.Tags,
	}
	folder, err := a.ideas.FindOrCreateFolder(ctx, owner, doc.Folder)
	if err != nil {
		return nil, fmt.Errorf("archive: import: %w", err)
	}
	if folder != nil {
		in.FolderID = &folder.ID
	}
	return a.ideas.ImportIdea(ctx, owner, in, doc.Created)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
}
