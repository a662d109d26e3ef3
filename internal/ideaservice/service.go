// Package ideaservice implements the idea box operations on top of the
// record store: capture, edit, filing into folders, filtering and search.
package ideaservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/checksum"
	"github.com/starford/jotter/internal/highlight"
	"github.com/starford/jotter/internal/labelcolor"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/store"
)

// Change kinds passed to the Notifier.
const (
	IdeaCreated   = "idea.created"
	IdeaUpdated   = "idea.updated"
	IdeaDeleted   = "idea.deleted"
	FolderCreated = "folder.created"
	FolderUpdated = "folder.updated"
	FolderDeleted = "folder.deleted"
)

// Notifier receives change notifications scoped to one owner.
type Notifier interface {
	PublishIdeaEvent(owner, kind, id string)
}

// IdeaDetail is an idea as presented to clients.
type IdeaDetail struct {
	models.Idea
	DisplayTitle string             `json:"display_title"`
	Checksum     string             `json:"checksum"`
	FolderName   string             `json:"folder_name"`
	FolderBadge  labelcolor.Badge   `json:"folder_badge"`
	TagBadges    []labelcolor.Badge `json:"tag_badges"`
}

// IdeaInput carries the writable fields of an idea. Tags may be given with or
// without a leading '#'.
type IdeaInput struct {
	Title       string
	Description string
	Tags        []string
	FolderID    *string
}

// ListOptions selects and orders ideas.
type ListOptions struct {
	// Folder is empty for all ideas, models.UncategorizedID for ideas
	// without a folder, or a folder id.
	Folder    string
	Query     string
	Ascending bool
	Limit     int
	Offset    int
}

// IdeaPage is one page of ideas plus the total number that matched.
type IdeaPage struct {
	Items []IdeaDetail `json:"items"`
	Total int          `json:"total"`
}

// Service coordinates the record store and change notifications.
type Service struct {
	db     *store.DB
	notify Notifier
	now    func() time.Time
}

// NewService creates a new idea service. notify may be nil.
func NewService(db *store.DB, notify Notifier) *Service {
	return &Service{db: db, notify: notify, now: time.Now}
}

// CreateIdea captures a new idea for owner.
func (s *Service) CreateIdea(ctx context.Context, owner string, in IdeaInput) (*IdeaDetail, error) {
	now := s.now().UTC()
	idea := &models.Idea{
		ID:        uuid.NewString(),
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, idea, in); err != nil {
		return nil, err
	}
	return s.insert(ctx, idea)
}

// ImportIdea stores an idea whose creation time is already known.
func (s *Service) ImportIdea(ctx context.Context, owner string, in IdeaInput, created time.Time) (*IdeaDetail, error) {
	if created.IsZero() {
		created = s.now()
	}
	idea := &models.Idea{
		ID:        uuid.NewString(),
		UserID:    owner,
		CreatedAt: created.UTC(),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.apply(ctx, idea, in); err != nil {
		return nil, err
	}
	return s.insert(ctx, idea)
}

func (s *Service) insert(ctx context.Context, idea *models.Idea) (*IdeaDetail, error) {
	if err := s.db.InsertIdea(ctx, idea); err != nil {
		return nil, err
	}
	s.publish(idea.UserID, IdeaCreated, idea.ID)
	return s.detail(ctx, idea)
}

// GetIdea returns one of the owner's ideas.
func (s *Service) GetIdea(ctx context.Context, owner, id string) (*IdeaDetail, error) {
	idea, err := s.db.GetIdea(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, idea)
}

// UpdateIdea replaces the writable fields of an idea. A non-empty ifMatch
// must equal the idea's current checksum.
func (s *Service) UpdateIdea(ctx context.Context, owner, id string, in IdeaInput, ifMatch string) (*IdeaDetail, error) {
	idea, err := s.db.GetIdea(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != Checksum(idea) {
		return nil, apperr.ErrConflict
	}
	if err := s.apply(ctx, idea, in); err != nil {
		return nil, err
	}
	idea.UpdatedAt = s.now().UTC()
	if err := s.db.UpdateIdea(ctx, idea); err != nil {
		return nil, err
	}
	s.publish(owner, IdeaUpdated, id)
	return s.detail(ctx, idea)
}

// MoveIdea files an idea under folderID. An empty folderID or
// models.UncategorizedID removes it from its folder.
func (s *Service) MoveIdea(ctx context.Context, owner, id, folderID string) (*IdeaDetail, error) {
	idea, err := s.db.GetIdea(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	target, err := s.resolveFolder(ctx, owner, folderRef(folderID))
	if err != nil {
		return nil, err
	}
	idea.FolderID = target
	idea.UpdatedAt = s.now().UTC()
	if err := s.db.UpdateIdea(ctx, idea); err != nil {
		return nil, err
	}
	s.publish(owner, IdeaUpdated, id)
	return s.detail(ctx, idea)
}

// DeleteIdea removes one of the owner's ideas.
func (s *Service) DeleteIdea(ctx context.Context, owner, id string) error {
	if err := s.db.DeleteIdea(ctx, owner, id); err != nil {
		return err
	}
	s.publish(owner, IdeaDeleted, id)
	return nil
}

// ListIdeas returns the owner's ideas, newest first unless opts.Ascending.
// A non-empty Query keeps ideas whose title, description or tags contain it,
// compared case-insensitively after trimming.
func (s *Service) ListIdeas(ctx context.Context, owner string, opts ListOptions) (*IdeaPage, error) {
	filter := store.IdeaFilter{Ascending: opts.Ascending}
	switch opts.Folder {
	case "":
	case models.UncategorizedID:
		filter.Unfoldered = true
	default:
		if _, err := s.db.GetFolder(ctx, owner, opts.Folder); err != nil {
			return nil, err
		}
		filter.FolderID = opts.Folder
	}

	q := highlight.Normalize(opts.Query)
	if q == "" {
		filter.Limit, filter.Offset = opts.Limit, opts.Offset
	}
	ideas, total, err := s.db.ListIdeas(ctx, owner, filter)
	if err != nil {
		return nil, err
	}
	if q != "" {
		ideas = FilterIdeas(ideas, q)
		total = len(ideas)
		ideas = paginate(ideas, opts.Limit, opts.Offset)
	}

	folders, err := s.folderNames(ctx, owner)
	if err != nil {
		return nil, err
	}
	items := make([]IdeaDetail, len(ideas))
	for i := range ideas {
		items[i] = s.decorate(&ideas[i], folders)
	}
	return &IdeaPage{Items: items, Total: total}, nil
}

// FilterIdeas keeps the ideas matching the normalized query q.
func FilterIdeas(ideas []models.Idea, q string) []models.Idea {
	out := []models.Idea{}
	for _, i := range ideas {
		if highlight.Matches(i.Title, q) ||
			highlight.Matches(i.Description, q) ||
			highlight.Matches(tagText(i.Tags), q) {
			out = append(out, i)
		}
	}
	return out
}

// tagText renders tags the way users type them, so "#work" finds work.
func tagText(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "#" + strings.Join(tags, " #")
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Search runs a full-text search over the owner's ideas.
func (s *Service) Search(ctx context.Context, owner, query string, limit int) ([]store.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalid)
	}
	return s.db.Search(ctx, owner, query, limit)
}

// Checksum is the optimistic-concurrency tag of an idea's content.
func Checksum(i *models.Idea) string {
	folder := ""
	if i.FolderID != nil {
		folder = *i.FolderID
	}
	return checksum.Fields(i.Title, i.Description, strings.Join(i.Tags, " "), folder)
}

// apply copies validated input onto idea.
func (s *Service) apply(ctx context.Context, idea *models.Idea, in IdeaInput) error {
	folderID, err := s.resolveFolder(ctx, idea.UserID, in.FolderID)
	if err != nil {
		return err
	}
	idea.Title = strings.TrimSpace(in.Title)
	idea.Description = strings.TrimSpace(in.Description)
	idea.Tags = NormalizeTags(in.Tags)
	idea.FolderID = folderID
	if err := idea.Validate(); err != nil {
		return invalid(err)
	}
	return nil
}

// resolveFolder checks that ref names one of the owner's folders.
func (s *Service) resolveFolder(ctx context.Context, owner string, ref *string) (*string, error) {
	if ref == nil || *ref == "" || *ref == models.UncategorizedID {
		return nil, nil
	}
	f, err := s.db.GetFolder(ctx, owner, *ref)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: folder %s does not exist", apperr.ErrInvalid, *ref)
	}
	if err != nil {
		return nil, err
	}
	return &f.ID, nil
}

func folderRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func (s *Service) detail(ctx context.Context, idea *models.Idea) (*IdeaDetail, error) {
	names := map[string]string{}
	if idea.InFolder() {
		f, err := s.db.GetFolder(ctx, idea.UserID, *idea.FolderID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		if f != nil {
			names[f.ID] = f.Name
		}
	}
	d := s.decorate(idea, names)
	return &d, nil
}

func (s *Service) decorate(idea *models.Idea, folders map[string]string) IdeaDetail {
	d := IdeaDetail{
		Idea:         *idea,
		DisplayTitle: idea.DisplayTitle(),
		Checksum:     Checksum(idea),
		FolderBadge:  labelcolor.UncategorizedBadge(),
		FolderName:   labelcolor.UncategorizedBadge().Label,
		TagBadges:    make([]labelcolor.Badge, len(idea.Tags)),
	}
	if idea.InFolder() {
		if name, ok := folders[*idea.FolderID]; ok {
			d.FolderName = name
			d.FolderBadge = labelcolor.BadgeFor(name)
		}
	}
	for i, t := range idea.Tags {
		d.TagBadges[i] = labelcolor.BadgeFor(t)
	}
	return d
}

func (s *Service) folderNames(ctx context.Context, owner string) (map[string]string, error) {
	folders, err := s.db.ListFolders(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(folders))
	for _, f := range folders {
		out[f.ID] = f.Name
	}
	return out, nil
}

func (s *Service) publish(owner, kind, id string) {
	if s.notify == nil {
		return
	}
	s.notify.PublishIdeaEvent(owner, kind, id)
	slog.Debug("ideaservice: published", slog.String("kind", kind), slog.String("id", id))
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
}
