// Package account handles sign-up, sign-in and session resolution.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// Store is the persistence the account service needs.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, s *models.Session) error
	SessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Service issues and resolves sessions.
type Service struct {
	store      Store
	sessionTTL time.Duration
	cost       int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSessionTTL sets how long issued sessions stay valid.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) { s.sessionTTL = d }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an account service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		sessionTTL: 30 * 24 * time.Hour,
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Credentials is an email/password pair.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the credentials.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(MinPasswordLen, 72)),
	)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new user.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	creds := Credentials{Email: normalizeEmail(email), Password: password}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("account: hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("account: user signed up", slog.String("user_id", u.ID))
	return u, nil
}

// SignIn checks the password and issues a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	u, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := &models.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// SignOut revokes a session token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// CurrentUser resolves a session token to its user. Unknown and expired
// tokens yield apperr.ErrUnauthenticated.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.ErrUnauthenticated
	}
	sess, err := s.store.SessionByToken(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, apperr.ErrUnauthenticated
	}
	u, err := s.store.UserByID(ctx, sess.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	return u, err
}

// UserByEmail looks up a user for tools that act on behalf of one account.
func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.UserByEmail(ctx, normalizeEmail(email))
}

// PurgeExpired deletes expired sessions.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}
