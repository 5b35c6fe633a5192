package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"postboard/events"
	"postboard/shared"
	"postboard/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySignUpSignInSignOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewLocalBus()
	p := NewMemoryProvider(bus)

	sub, err := p.Subscribe(ctx)
	require.NoError(t, err)

	fullName := "Ada Lovelace"
	identity, err := p.SignUp(ctx, " Ada@Example.com ", "secret1", Metadata{Username: "ada", FullName: &fullName})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, "ada", identity.UserMetadata["username"])
	assert.NotEqual(t, "secret1", identity.PasswordHash)

	session, err := p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, identity.Id, session.Identity.Id)
	assert.True(t, session.ExpiresAt.After(time.Now().AddDate(0, 0, 89)))

	current, err := p.CurrentSession(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, identity.Id, current.Identity.Id)

	require.NoError(t, p.SignOut(ctx, session.Token))
	require.NoError(t, p.SignOut(ctx, session.Token), "signing out twice is a no-op")

	current, err = p.CurrentSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, current)

	var kinds []shared.SessionEventKind
	for i := 0; i < 3; i++ {
		select {
		case ev := <-sub:
			assert.Equal(t, identity.Id, ev.IdentityId)
			kinds = append(kinds, ev.Kind)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for session event")
		}
	}
	assert.Equal(t, []shared.SessionEventKind{
		shared.SessionEventSignedUp,
		shared.SessionEventSignedIn,
		shared.SessionEventSignedOut,
	}, kinds)
}

func TestMemorySignUpValidation(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider(nil)

	tests := []struct {
		name     string
		email    string
		password string
		username string
		kind     types.ErrorKind
	}{
		{"missing email", "", "secret1", "ada", types.KindValidation},
		{"missing password", "a@b.c", "", "ada", types.KindValidation},
		{"bad email", "ada", "secret1", "ada", types.KindValidation},
		{"short password", "a@b.c", "12345", "ada", types.KindValidation},
		{"missing username", "a@b.c", "secret1", " ", types.KindValidation},
		{"password too long", "a@b.c", strings.Repeat("x", 80), "ada", types.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SignUp(ctx, tt.email, tt.password, Metadata{Username: tt.username})
			assert.True(t, types.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestMemorySignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider(nil)

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", Metadata{Username: "ada"})
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "ADA@example.com", "secret2", Metadata{Username: "ada2"})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindAuth))
	assert.Equal(t, msgAlreadyRegistered, err.Error())
}

func TestMemorySignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider(nil)

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", Metadata{Username: "ada"})
	require.NoError(t, err)

	for _, creds := range [][2]string{{"ada@example.com", "wrong!"}, {"nobody@example.com", "secret1"}} {
		_, err = p.SignIn(ctx, creds[0], creds[1])
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindAuth))
		assert.Equal(t, msgInvalidCredentials, err.Error())
	}
}

func TestMemorySessionExpiry(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider(nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", Metadata{Username: "ada"})
	require.NoError(t, err)
	session, err := p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	now = session.ExpiresAt
	current, err := p.CurrentSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.NotContains(t, p.sessions, session.Token, "expired session is dropped")
}

func TestSubscribeWithoutBus(t *testing.T) {
	_, err := NewMemoryProvider(nil).Subscribe(context.Background())
	assert.Error(t, err)
}

func TestSessionToApi(t *testing.T) {
	session, err := func() (*Session, error) {
		p := NewMemoryProvider(nil)
		_, err := p.SignUp(context.Background(), "ada@example.com", "secret1", Metadata{Username: "ada"})
		if err != nil {
			return nil, err
		}
		return p.SignIn(context.Background(), "ada@example.com", "secret1")
	}()
	require.NoError(t, err)

	res := session.ToApi()
	assert.Equal(t, session.Token, res.Token)
	assert.Equal(t, "ada@example.com", res.Identity.Email)
	assert.Equal(t, session.ExpiresAt.UTC().Format(time.RFC3339), res.ExpiresAt)
}
