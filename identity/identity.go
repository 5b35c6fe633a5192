// Package identity is the identity provider the server delegates sign up, sign in,
// sign out and session lookup to.
package identity

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"postboard/db"
	"postboard/events"
	"postboard/shared"
	"postboard/types"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

const (
	msgInvalidCredentials = "Invalid login credentials"
	msgAlreadyRegistered  = "User already registered"
)

type Session struct {
	Token     string
	Identity  *db.Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) ToApi() *shared.SessionResponse {
	return &shared.SessionResponse{
		Token:     s.Token,
		Identity:  s.Identity.ToApi(),
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

type Metadata struct {
	Username string
	FullName *string
}

type Provider interface {
	// CurrentSession returns nil, nil when token is empty, unknown, expired or signed out.
	CurrentSession(ctx context.Context, token string) (*Session, error)
	SignUp(ctx context.Context, email, password string, meta Metadata) (*db.Identity, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error

	// Subscribe delivers session changes at least once; duplicates are possible.
	Subscribe(ctx context.Context) (<-chan events.SessionEvent, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return types.NewValidationError("Email and password are required")
	}
	if !strings.Contains(email, "@") {
		return types.NewValidationError("Invalid email address")
	}
	return nil
}

func validateSignUp(email, password string, meta Metadata) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return types.NewValidationError("Password should be at least 6 characters")
	}
	if strings.TrimSpace(meta.Username) == "" {
		return types.NewValidationError("Username is required")
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", types.NewValidationError("Password is too long")
		}
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func metadataMap(meta Metadata) db.JSONMap {
	m := db.JSONMap{"username": meta.Username}
	if meta.FullName != nil {
		m["full_name"] = *meta.FullName
	} else {
		m["full_name"] = nil
	}
	return m
}

func publish(ctx context.Context, bus events.Bus, kind shared.SessionEventKind, identityId string) {
	if bus == nil {
		return
	}
	err := bus.Publish(ctx, events.NewSessionEvent(kind, identityId))
	if err != nil {
		// the session change already happened; subscribers catch up on the next event
		log.Printf("Error publishing %s event for %s: %v\n", kind, identityId, err)
	}
}

func expiresAt(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, db.TokenExpirationDays)
}
