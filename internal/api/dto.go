package api

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/jotter/internal/highlight"
	"github.com/starford/jotter/internal/ideaservice"
	"github.com/starford/jotter/internal/labelcolor"
	"github.com/starford/jotter/internal/models"
)

// maxFragments bounds a single highlight request.
const maxFragments = 2000

// CredentialsRequest is the request body for sign-up and login.
type CredentialsRequest struct {
	Email    string `json:"email" example:"ada@example.com" validate:"required"`
	Password string `json:"password" example:"correct horse" validate:"required"`
}

// Validate validates the request.
func (r *CredentialsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string       `json:"token" example:"3f0c..." validate:"required"`
	ExpiresAt time.Time    `json:"expires_at" validate:"required"`
	User      *models.User `json:"user" validate:"required"`
}

// IdeaRequest is the request body for creating or replacing an idea.
// TagsText, when set, is parsed like the capture form: "#work #urgent".
type IdeaRequest struct {
	Title       string   `json:"title,omitempty" example:"Trip"`
	Description string   `json:"description" example:"Mallorca in May" validate:"required"`
	Tags        []string `json:"tags,omitempty" example:"travel,summer"`
	TagsText    string   `json:"tags_text,omitempty" example:"#travel #summer"`
	FolderID    *string  `json:"folder_id,omitempty"`
}

// Validate validates the request.
func (r *IdeaRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Length(0, models.MaxTitleLen)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, models.MaxDescriptionLen)),
	)
}

func (r *IdeaRequest) input() ideaservice.IdeaInput {
	tags := r.Tags
	if r.TagsText != "" {
		tags = append(append([]string{}, tags...), ideaservice.ParseTags(r.TagsText)...)
	}
	return ideaservice.IdeaInput{
		Title:       r.Title,
		Description: r.Description,
		Tags:        tags,
		FolderID:    r.FolderID,
	}
}

// MoveIdeaRequest files an idea. An empty folder_id or "uncategorized"
// removes it from its folder.
type MoveIdeaRequest struct {
	FolderID string `json:"folder_id" example:"uncategorized"`
}

// Validate validates the request.
func (r *MoveIdeaRequest) Validate() error { return nil }

// FolderRequest is the request body for creating or renaming a folder.
type FolderRequest struct {
	Name string `json:"name" example:"Work" validate:"required"`
}

// Validate validates the request.
func (r *FolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, models.MaxFolderNameLen)),
	)
}

// IdeaDetail is the idea response type (aliased from the domain layer).
type IdeaDetail = ideaservice.IdeaDetail

// DateGroup is a run of ideas from one day (aliased from the domain layer).
type DateGroup = ideaservice.DateGroup

// FolderSummary is a folder card (aliased from the domain layer).
type FolderSummary = ideaservice.FolderSummary

// IdeaListResponse wraps a page of ideas.
type IdeaListResponse struct {
	Ideas      []IdeaDetail     `json:"ideas" validate:"required"`
	Total      int              `json:"total" example:"42" validate:"required"`
	Groups     []DateGroup      `json:"groups" validate:"required"`
	Highlights highlight.Result `json:"highlights,omitempty"`
}

// FolderListResponse wraps the folder cards.
type FolderListResponse struct {
	Folders []FolderSummary `json:"folders" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID      string `json:"id" example:"0b8f..." validate:"required"`
	Title   string `json:"title" example:"Trip" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// HighlightRequest asks for render instructions for displayed fragments.
type HighlightRequest struct {
	Query     string               `json:"query" example:"ca"`
	Fragments []highlight.Fragment `json:"fragments" validate:"required"`
}

// Validate validates the request. Fragment IDs must be present and unique.
func (r *HighlightRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Fragments, validation.Length(0, maxFragments), validation.By(uniqueFragmentIDs)),
	)
}

func uniqueFragmentIDs(v any) error {
	frags, _ := v.([]highlight.Fragment)
	seen := make(map[string]struct{}, len(frags))
	for _, f := range frags {
		if f.ID == "" {
			return errors.New("fragment id is required")
		}
		if _, dup := seen[f.ID]; dup {
			return errors.New("fragment ids must be unique")
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// HighlightResponse carries render instructions and their HTML rendering.
type HighlightResponse struct {
	Instructions highlight.Result  `json:"instructions" validate:"required"`
	HTML         map[string]string `json:"html" validate:"required"`
}

// PaletteResponse lists the label palette in index order.
type PaletteResponse struct {
	Palette       []labelcolor.Color `json:"palette" validate:"required"`
	Uncategorized labelcolor.Badge   `json:"uncategorized" validate:"required"`
}

// LabelResponse is the badge for one label.
type LabelResponse struct {
	labelcolor.Badge
	ForegroundHex labelcolor.Color `json:"foreground_hex" example:"#000000"`
}
