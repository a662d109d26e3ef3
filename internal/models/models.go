// Package models defines the domain types for Jotter.
package models

import (
	"errors"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field limits.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 20000
	MaxFolderNameLen  = 100
)

// UncategorizedID addresses the pseudo folder holding ideas without a folder.
const UncategorizedID = "uncategorized"

// User is an account owner.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a bearer token issued at sign-in.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Folder groups ideas. Names are not unique.
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate validates the folder.
func (f *Folder) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.UserID, validation.Required),
		validation.Field(&f.Name, validation.Required, validation.Length(1, MaxFolderNameLen)),
	)
}

// Idea is a captured note. Tags are an ordered set stored without the
// leading '#'. A nil FolderID means the idea is uncategorized.
type Idea struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	FolderID    *string   `json:"folder_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayTitle returns the title or a placeholder when there is none.
func (i *Idea) DisplayTitle() string {
	if i.Title == "" {
		return "(No title)"
	}
	return i.Title
}

// InFolder reports whether the idea is filed under a folder.
func (i *Idea) InFolder() bool {
	return i.FolderID != nil && *i.FolderID != ""
}

// Validate validates the idea.
func (i *Idea) Validate() error {
	if err := validation.ValidateStruct(i,
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.Title, validation.Length(0, MaxTitleLen)),
		validation.Field(&i.Description, validation.Required, validation.Length(1, MaxDescriptionLen)),
		validation.Field(&i.Tags, validation.Each(validation.Required, validation.By(validTag))),
	); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(i.Tags))
	for _, t := range i.Tags {
		if _, dup := seen[t]; dup {
			return validation.Errors{"tags": errors.New("tags must be unique")}
		}
		seen[t] = struct{}{}
	}
	return nil
}

func validTag(v any) error {
	s, _ := v.(string)
	if strings.HasPrefix(s, "#") {
		return errors.New("must not start with '#'")
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return errors.New("must not contain whitespace")
	}
	return nil
}
