package ideaservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/labelcolor"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/store"
)

// FolderSummary describes a folder card. The uncategorized pseudo folder has
// ID models.UncategorizedID and Pseudo set.
type FolderSummary struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Ideas     int              `json:"ideas"`
	Badge     labelcolor.Badge `json:"badge"`
	Pseudo    bool             `json:"pseudo,omitempty"`
	CreatedAt *time.Time       `json:"created_at,omitempty"`
}

func summarize(f store.FolderCount) FolderSummary {
	created := f.CreatedAt
	return FolderSummary{
		ID:        f.ID,
		Name:      f.Name,
		Ideas:     f.Ideas,
		Badge:     labelcolor.BadgeFor(f.Name),
		CreatedAt: &created,
	}
}

func uncategorized(count int) FolderSummary {
	b := labelcolor.UncategorizedBadge()
	return FolderSummary{
		ID:     models.UncategorizedID,
		Name:   b.Label,
		Ideas:  count,
		Badge:  b,
		Pseudo: true,
	}
}

// ListFolders returns the owner's folders by name, followed by the
// uncategorized pseudo folder.
func (s *Service) ListFolders(ctx context.Context, owner string) ([]FolderSummary, error) {
	folders, err := s.db.ListFolders(ctx, owner)
	if err != nil {
		return nil, err
	}
	loose, err := s.db.CountIdeas(ctx, owner, store.IdeaFilter{Unfoldered: true})
	if err != nil {
		return nil, err
	}
	out := make([]FolderSummary, 0, len(folders)+1)
	for _, f := range folders {
		out = append(out, summarize(f))
	}
	return append(out, uncategorized(loose)), nil
}

// GetFolder returns one folder summary, including the pseudo folder.
func (s *Service) GetFolder(ctx context.Context, owner, id string) (*FolderSummary, error) {
	if id == models.UncategorizedID {
		n, err := s.db.CountIdeas(ctx, owner, store.IdeaFilter{Unfoldered: true})
		if err != nil {
			return nil, err
		}
		u := uncategorized(n)
		return &u, nil
	}
	f, err := s.db.GetFolder(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	n, err := s.db.CountIdeas(ctx, owner, store.IdeaFilter{FolderID: id})
	if err != nil {
		return nil, err
	}
	sum := summarize(store.FolderCount{Folder: *f, Ideas: n})
	return &sum, nil
}

// CreateFolder adds a folder with a trimmed, non-empty name.
func (s *Service) CreateFolder(ctx context.Context, owner, name string) (*FolderSummary, error) {
	f := &models.Folder{
		ID:        uuid.NewString(),
		UserID:    owner,
		Name:      strings.TrimSpace(name),
		CreatedAt: s.now().UTC(),
	}
	if err := f.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.db.InsertFolder(ctx, f); err != nil {
		return nil, err
	}
	s.publish(owner, FolderCreated, f.ID)
	sum := summarize(store.FolderCount{Folder: *f})
	return &sum, nil
}

// RenameFolder renames a folder. The pseudo folder cannot be renamed.
func (s *Service) RenameFolder(ctx context.Context, owner, id, name string) (*FolderSummary, error) {
	if id == models.UncategorizedID {
		return nil, fmt.Errorf("%w: the uncategorized folder cannot be renamed", apperr.ErrInvalid)
	}
	f := models.Folder{UserID: owner, Name: strings.TrimSpace(name)}
	if err := f.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.db.RenameFolder(ctx, owner, id, f.Name); err != nil {
		return nil, err
	}
	s.publish(owner, FolderUpdated, id)
	return s.GetFolder(ctx, owner, id)
}

// DeleteFolder removes a folder; its ideas become uncategorized.
func (s *Service) DeleteFolder(ctx context.Context, owner, id string) error {
	if id == models.UncategorizedID {
		return fmt.Errorf("%w: the uncategorized folder cannot be deleted", apperr.ErrInvalid)
	}
	if err := s.db.DeleteFolder(ctx, owner, id); err != nil {
		return err
	}
	s.publish(owner, FolderDeleted, id)
	return nil
}

// FindOrCreateFolder returns the owner's folder named name, creating it when
// missing. An empty name yields nil.
func (s *Service) FindOrCreateFolder(ctx context.Context, owner, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, labelcolor.UncategorizedBadge().Label) {
		return nil, nil
	}
	f, err := s.db.FolderByName(ctx, owner, name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	sum, err := s.CreateFolder(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return &models.Folder{ID: sum.ID, UserID: owner, Name: sum.Name, CreatedAt: *sum.CreatedAt}, nil
}
