package identity

import (
	"context"
	"regexp"
	"testing"

	"postboard/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockProvider(t *testing.T) (*DBProvider, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() })

	p := NewDBProvider(sqlx.NewDb(mockDb, "postgres"), nil)
	p.cost = 4
	return p, mock
}

func TestDBSignUpDuplicateEmail(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO identities")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "identities_email_key"})
	mock.ExpectRollback()

	_, err := p.SignUp(context.Background(), "ada@example.com", "secret1", Metadata{Username: "ada"})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindAuth))
	assert.Equal(t, msgAlreadyRegistered, err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSignInUnknownEmail(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM identities WHERE email = $1")).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := p.SignIn(context.Background(), "Ada@Example.com", "secret1")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindAuth))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCurrentSessionIgnoresMalformedToken(t *testing.T) {
	p, mock := newMockProvider(t)

	session, err := p.CurrentSession(context.Background(), "not-a-token")
	require.NoError(t, err)
	assert.Nil(t, session)

	session, err = p.CurrentSession(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSignInStoreFailure(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM identities WHERE email = $1")).
		WillReturnError(assert.AnError)

	_, err := p.SignIn(context.Background(), "ada@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}
