package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/testutil"
)

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	db := testutil.TestDB(t)
	return New(db, append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)...)
}

func TestSignUpSignIn(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "  Ada@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.PasswordHash == "secret1" {
		t.Error("password stored in clear")
	}

	sess, who, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if who.ID != u.ID || sess.Token == "" {
		t.Errorf("session = %+v", sess)
	}

	cur, err := svc.CurrentUser(ctx, sess.Token)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if cur.ID != u.ID {
		t.Errorf("current user = %q", cur.ID)
	}
}

func TestSignUp_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "not-an-email", "secret1"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad email: err = %v", err)
	}
	if _, err := svc.SignUp(ctx, "ada@example.com", "12345"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("short password: err = %v", err)
	}
	if _, err := svc.SignUp(ctx, "ada@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignUp(ctx, "ADA@example.com", "secret2"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate: err = %v, want ErrAlreadyExists", err)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, _ = svc.SignUp(ctx, "ada@example.com", "secret1")

	if _, _, err := svc.SignIn(ctx, "ada@example.com", "wrong!"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestSignOut(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, _ = svc.SignUp(ctx, "ada@example.com", "secret1")
	sess, _, _ := svc.SignIn(ctx, "ada@example.com", "secret1")

	if err := svc.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := svc.CurrentUser(ctx, sess.Token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestCurrentUser_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := newService(t, WithClock(clock), WithSessionTTL(time.Hour))
	ctx := context.Background()

	_, _ = svc.SignUp(ctx, "ada@example.com", "secret1")
	sess, _, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Hour)
	if _, err := svc.CurrentUser(ctx, sess.Token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
	n, err := svc.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Errorf("PurgeExpired = %d, %v", n, err)
	}
}

func TestCurrentUser_EmptyToken(t *testing.T) {
	svc := newService(t)
	if _, err := svc.CurrentUser(context.Background(), ""); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("err = %v", err)
	}
}

func TestUserContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("empty context should carry no user")
	}
	svc := newService(t)
	u, _ := svc.SignUp(context.Background(), "ada@example.com", "secret1")
	ctx := WithUser(context.Background(), u)
	got, ok := UserFromContext(ctx)
	if !ok || got.ID != u.ID {
		t.Errorf("UserFromContext = %+v, %v", got, ok)
	}
}
