package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/jotter/internal/account"
	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/ideaservice"
	"github.com/starford/jotter/internal/store"
	"github.com/starford/jotter/internal/testutil"
)

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(ApplicationConfig{LogFormat: LogFormatJSON}, &buf).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	NewLogger(ApplicationConfig{LogFormat: LogFormatText}, &buf).Info("hello")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	NewLogger(ApplicationConfig{LogFormat: LogFormatJSON, LogLevel: 4}, &buf).Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestNewHandler_Health(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHandler(db, ideaservice.NewService(db, nil), account.New(db), nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s = %d", path, rec.Code)
		}
		if rec.Body.String() != `{"status":"ok"}` {
			t.Errorf("%s body = %s", path, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ideas", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("/api/ideas without session = %d, want 401", rec.Code)
	}

	_ = db.Close()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready with closed db = %d, want 503", rec.Code)
	}
}

func TestRunExport(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "jotter.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	u, err := account.New(db, account.WithBcryptCost(bcrypt.MinCost)).SignUp(ctx, "me@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	d, err := ideaservice.NewService(db, nil).CreateIdea(ctx, u.ID, ideaservice.IdeaInput{Description: "export me"})
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	cfg := NewDefaultConfig()
	cfg.SQLite.Path = dbPath
	out := filepath.Join(t.TempDir(), "export")

	n, err := RunExport(ctx, "ME@example.com", out, WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	if n != 1 {
		t.Errorf("exported %d, want 1", n)
	}
	data, err := os.ReadFile(filepath.Join(out, "uncategorized", d.ID+".md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "export me") {
		t.Errorf("export = %q", data)
	}

	_, err = RunExport(ctx, "nobody@example.com", out, WithConfig(cfg), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}
