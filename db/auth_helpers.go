package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const TokenExpirationDays = 90

var ErrInvalidToken = errors.New("invalid token")

func HashToken(token string) (string, error) {
	uid, err := uuid.Parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	bytes := uid[:]
	hashBytes := sha256.Sum256(bytes)
	return hex.EncodeToString(hashBytes[:]), nil
}

func CreateAuthToken(ctx context.Context, tx *sqlx.Tx, identityId string) (token string, authToken *AuthToken, err error) {
	uid := uuid.New()
	bytes := uid[:]
	hashBytes := sha256.Sum256(bytes)
	hash := hex.EncodeToString(hashBytes[:])

	authToken = &AuthToken{
		IdentityId: identityId,
		TokenHash:  hash,
	}

	err = tx.QueryRowxContext(ctx, "INSERT INTO auth_tokens (identity_id, token_hash) VALUES ($1, $2) RETURNING id, created_at", identityId, hash).Scan(&authToken.Id, &authToken.CreatedAt)

	if err != nil {
		return "", nil, fmt.Errorf("error creating auth token: %v", err)
	}

	return uid.String(), authToken, nil
}

func ValidateAuthToken(ctx context.Context, q sqlx.QueryerContext, token string) (*AuthToken, error) {
	tokenHash, err := HashToken(token)
	if err != nil {
		return nil, err
	}

	var authToken AuthToken
	err = sqlx.GetContext(ctx, q, &authToken, "SELECT * FROM auth_tokens WHERE token_hash = $1 AND created_at > $2 AND deleted_at IS NULL", tokenHash, time.Now().AddDate(0, 0, -TokenExpirationDays))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidToken
		}

		return nil, fmt.Errorf("error validating token: %v", err)
	}

	return &authToken, nil
}

func DeleteAuthToken(ctx context.Context, e sqlx.ExecerContext, tokenHash string) (int64, error) {
	res, err := e.ExecContext(ctx, "UPDATE auth_tokens SET deleted_at = NOW() WHERE token_hash = $1 AND deleted_at IS NULL", tokenHash)
	if err != nil {
		return 0, fmt.Errorf("error deleting auth token: %v", err)
	}

	return res.RowsAffected()
}
