package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

func (s *PostStore) InsertProfile(ctx context.Context, actorId string, profile *Profile) error {
	if actorId == "" || actorId != profile.Id {
		return ErrPolicyViolation
	}
	return s.insertProfile(ctx, profile)
}

// InsertProfilePrivileged skips the row-level policy. Sign up uses it to create the
// profile before the new identity has a session of its own.
func (s *PostStore) InsertProfilePrivileged(ctx context.Context, profile *Profile) error {
	return s.insertProfile(ctx, profile)
}

func (s *PostStore) insertProfile(ctx context.Context, profile *Profile) error {
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO profiles (id, username, full_name) VALUES ($1, $2, $3)",
		profile.Id, profile.Username, profile.FullName,
	)

	if err != nil {
		if NonUniqueConstraint(err) == "profiles_username_key" {
			return errors.Wrapf(err, "username %q is already taken", profile.Username)
		}
		return errors.Wrap(err, "error creating profile")
	}

	return nil
}

func (s *PostStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := s.conn.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "error getting profile")
	}

	return &profile, nil
}
