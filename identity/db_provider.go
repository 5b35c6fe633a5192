package identity

import (
	"context"
	"errors"
	"log"

	"postboard/db"
	"postboard/events"
	"postboard/shared"
	"postboard/types"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// DBProvider keeps identities and hashed session tokens in Postgres.
type DBProvider struct {
	conn *sqlx.DB
	bus  events.Bus
	cost int
}

func NewDBProvider(conn *sqlx.DB, bus events.Bus) *DBProvider {
	return &DBProvider{conn: conn, bus: bus, cost: bcrypt.DefaultCost}
}

func (p *DBProvider) CurrentSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	authToken, err := db.ValidateAuthToken(ctx, p.conn, token)
	if err != nil {
		if errors.Is(err, db.ErrInvalidToken) {
			return nil, nil
		}
		return nil, types.NewStoreError("Error validating session", err)
	}

	identity, err := db.GetIdentity(ctx, p.conn, authToken.IdentityId)
	if err != nil {
		return nil, types.NewStoreError("Error getting identity", err)
	}
	if identity == nil {
		return nil, nil
	}

	return &Session{
		Token:     token,
		Identity:  identity,
		CreatedAt: authToken.CreatedAt,
		ExpiresAt: expiresAt(authToken.CreatedAt),
	}, nil
}

func (p *DBProvider) SignUp(ctx context.Context, email, password string, meta Metadata) (*db.Identity, error) {
	email = normalizeEmail(email)

	if err := validateSignUp(email, password, meta); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password, p.cost)
	if err != nil {
		return nil, err
	}

	var identity *db.Identity
	err = db.WithTx(ctx, p.conn, "sign up", func(tx *sqlx.Tx) error {
		var err error
		identity, err = db.CreateIdentity(ctx, tx, email, hash, metadataMap(meta))
		return err
	})

	if err != nil {
		if errors.Is(err, db.ErrIdentityExists) {
			return nil, types.NewAuthError(msgAlreadyRegistered)
		}
		return nil, types.NewStoreError("Error signing up", err)
	}

	log.Printf("Signed up identity %s\n", identity.Id)
	publish(ctx, p.bus, shared.SessionEventSignedUp, identity.Id)

	return identity, nil
}

func (p *DBProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	identity, err := db.GetIdentityByEmail(ctx, p.conn, email)
	if err != nil {
		return nil, types.NewStoreError("Error signing in", err)
	}

	if identity == nil || !passwordMatches(identity.PasswordHash, password) {
		return nil, types.NewAuthError(msgInvalidCredentials)
	}

	var token string
	var authToken *db.AuthToken
	err = db.WithTx(ctx, p.conn, "sign in", func(tx *sqlx.Tx) error {
		var err error
		token, authToken, err = db.CreateAuthToken(ctx, tx, identity.Id)
		return err
	})

	if err != nil {
		return nil, types.NewStoreError("Error signing in", err)
	}

	log.Printf("Signed in identity %s\n", identity.Id)
	publish(ctx, p.bus, shared.SessionEventSignedIn, identity.Id)

	return &Session{
		Token:     token,
		Identity:  identity,
		CreatedAt: authToken.CreatedAt,
		ExpiresAt: expiresAt(authToken.CreatedAt),
	}, nil
}

// SignOut is a no-op for tokens that are already invalid.
func (p *DBProvider) SignOut(ctx context.Context, token string) error {
	authToken, err := db.ValidateAuthToken(ctx, p.conn, token)
	if err != nil {
		if errors.Is(err, db.ErrInvalidToken) {
			return nil
		}
		return types.NewStoreError("Error signing out", err)
	}

	n, err := db.DeleteAuthToken(ctx, p.conn, authToken.TokenHash)
	if err != nil {
		return types.NewStoreError("Error signing out", err)
	}

	if n > 0 {
		log.Printf("Signed out identity %s\n", authToken.IdentityId)
		publish(ctx, p.bus, shared.SessionEventSignedOut, authToken.IdentityId)
	}

	return nil
}

func (p *DBProvider) Subscribe(ctx context.Context) (<-chan events.SessionEvent, error) {
	if p.bus == nil {
		return nil, errors.New("no event bus configured")
	}
	return p.bus.Subscribe(ctx)
}
