//go:build integration

package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postboard",
				"POSTGRES_PASSWORD": "postboard",
				"POSTGRES_DB":       "postboard",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postboard:postboard@%s:%s/postboard?sslmode=disable", host, port.Port())
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, Connect(ConnectOpts{Url: startPostgres(t, ctx)}))
	t.Cleanup(func() { Close() })
	require.NoError(t, MigrationsUp("../migrations"))

	var identity *Identity
	err := WithTx(ctx, Conn, "create identity", func(tx *sqlx.Tx) error {
		var err error
		identity, err = CreateIdentity(ctx, tx, "Ada@Example.com", "hash", JSONMap{"username": "ada"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email)

	err = WithTx(ctx, Conn, "duplicate identity", func(tx *sqlx.Tx) error {
		_, err := CreateIdentity(ctx, tx, "ada@example.com", "hash", nil)
		return err
	})
	assert.ErrorIs(t, err, ErrIdentityExists)

	s := NewPostStore(Conn)
	require.NoError(t, s.InsertProfilePrivileged(ctx, &Profile{Id: identity.Id, Username: "ada"}))

	var ids []string
	for i := 0; i < 10; i++ {
		at := time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC)
		post, err := s.InsertPost(ctx, identity.Id, &Post{
			Title: fmt.Sprintf("post %d", i), Content: "c", AuthorId: identity.Id, CreatedAt: at, UpdatedAt: at,
		})
		require.NoError(t, err)
		ids = append(ids, post.Id)
	}

	page, err := s.SelectPosts(ctx, PostQuery{
		Order: &PostOrder{Column: "created_at"},
		Range: &PostRange{Offset: 9, Limit: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, page.TotalCount)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, ids[0], page.Rows[0].Id)
	if assert.NotNil(t, page.Rows[0].Author) {
		assert.Equal(t, "ada", page.Rows[0].Author.Username)
	}

	title := "edited"
	n, err := s.UpdatePosts(ctx, PostPatch{Title: &title, UpdatedAt: time.Now()}, PostFilter{Id: ids[0], AuthorId: "00000000-0000-0000-0000-000000000000"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeletePosts(ctx, PostFilter{Id: ids[0], AuthorId: identity.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var token string
	err = WithTx(ctx, Conn, "create token", func(tx *sqlx.Tx) error {
		var err error
		token, _, err = CreateAuthToken(ctx, tx, identity.Id)
		return err
	})
	require.NoError(t, err)

	authToken, err := ValidateAuthToken(ctx, Conn, token)
	require.NoError(t, err)
	assert.Equal(t, identity.Id, authToken.IdentityId)

	hash, err := HashToken(token)
	require.NoError(t, err)
	n, err = DeleteAuthToken(ctx, Conn, hash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = ValidateAuthToken(ctx, Conn, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
