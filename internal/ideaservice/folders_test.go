package ideaservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

func TestFolders_Lifecycle(t *testing.T) {
	svc, rec, owner := setup(t)
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, owner, "   "); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("blank name: err = %v", err)
	}

	f, err := svc.CreateFolder(ctx, owner, " Ideas ")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if f.Name != "Ideas" || f.Badge.Label != "Ideas" {
		t.Errorf("folder = %+v", f)
	}
	_, _ = svc.CreateIdea(ctx, owner, IdeaInput{Description: "x", FolderID: &f.ID})

	renamed, err := svc.RenameFolder(ctx, owner, f.ID, "  Projects ")
	if err != nil {
		t.Fatalf("RenameFolder: %v", err)
	}
	if renamed.Name != "Projects" || renamed.Ideas != 1 {
		t.Errorf("renamed = %+v", renamed)
	}
	if _, err := svc.RenameFolder(ctx, owner, f.ID, ""); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty rename: err = %v", err)
	}

	if err := svc.DeleteFolder(ctx, owner, f.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	u, err := svc.GetFolder(ctx, owner, models.UncategorizedID)
	if err != nil {
		t.Fatal(err)
	}
	if u.Ideas != 1 || !u.Pseudo {
		t.Errorf("uncategorized = %+v", u)
	}

	want := []string{FolderCreated, IdeaCreated, FolderUpdated, FolderDeleted}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for n := range want {
		if got[n] != want[n] {
			t.Errorf("event %d = %s, want %s", n, got[n], want[n])
		}
	}
}

func TestFolders_PseudoFolderIsReadOnly(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()
	if _, err := svc.RenameFolder(ctx, owner, models.UncategorizedID, "x"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("rename: err = %v", err)
	}
	if err := svc.DeleteFolder(ctx, owner, models.UncategorizedID); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("delete: err = %v", err)
	}
}

func TestListFolders(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()
	_, _ = svc.CreateFolder(ctx, owner, "b")
	_, _ = svc.CreateFolder(ctx, owner, "A")
	_, _ = svc.CreateIdea(ctx, owner, IdeaInput{Description: "loose"})

	got, err := svc.ListFolders(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Name != "A" || got[1].Name != "b" {
		t.Fatalf("folders = %+v", got)
	}
	last := got[2]
	if last.ID != models.UncategorizedID || last.Ideas != 1 || last.Badge.Background != "#71717A" {
		t.Errorf("pseudo folder = %+v", last)
	}
}

func TestFindOrCreateFolder(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()

	f1, err := svc.FindOrCreateFolder(ctx, owner, "Reading")
	if err != nil || f1 == nil {
		t.Fatalf("FindOrCreateFolder = %v, %v", f1, err)
	}
	f2, _ := svc.FindOrCreateFolder(ctx, owner, " Reading ")
	if f2.ID != f1.ID {
		t.Errorf("second call created a new folder")
	}
	none, err := svc.FindOrCreateFolder(ctx, owner, "uncategorized")
	if err != nil || none != nil {
		t.Errorf("pseudo folder name = %v, %v", none, err)
	}
}
