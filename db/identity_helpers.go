package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrIdentityExists = errors.New("user already registered")

func GetIdentity(ctx context.Context, q sqlx.QueryerContext, id string) (*Identity, error) {
	var identity Identity
	err := sqlx.GetContext(ctx, q, &identity, "SELECT * FROM identities WHERE id = $1", id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("error getting identity: %v", err)
	}

	return &identity, nil
}

func GetIdentityByEmail(ctx context.Context, q sqlx.QueryerContext, email string) (*Identity, error) {
	var identity Identity
	err := sqlx.GetContext(ctx, q, &identity, "SELECT * FROM identities WHERE email = $1", strings.ToLower(email))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("error getting identity: %v", err)
	}

	return &identity, nil
}

func CreateIdentity(ctx context.Context, tx *sqlx.Tx, email, passwordHash string, metadata JSONMap) (*Identity, error) {
	identity := Identity{
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		UserMetadata: metadata,
	}

	err := tx.QueryRowxContext(ctx,
		"INSERT INTO identities (email, password_hash, user_metadata) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
		identity.Email, identity.PasswordHash, identity.UserMetadata,
	).Scan(&identity.Id, &identity.CreatedAt, &identity.UpdatedAt)

	if err != nil {
		if IsNonUniqueErr(err) {
			return nil, fmt.Errorf("%w: %v", ErrIdentityExists, identity.Email)
		}
		return nil, fmt.Errorf("error creating identity: %v", err)
	}

	return &identity, nil
}
