package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"postboard/db"
	"postboard/events"
	"postboard/shared"
	"postboard/types"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryProvider is an in-process provider for development and tests.
type MemoryProvider struct {
	mu       sync.Mutex
	byEmail  map[string]*db.Identity
	byId     map[string]*db.Identity
	sessions map[string]*Session
	bus      events.Bus
	cost     int
	now      func() time.Time
}

func NewMemoryProvider(bus events.Bus) *MemoryProvider {
	return &MemoryProvider{
		byEmail:  make(map[string]*db.Identity),
		byId:     make(map[string]*db.Identity),
		sessions: make(map[string]*Session),
		bus:      bus,
		cost:     bcrypt.MinCost,
		now:      time.Now,
	}
}

func (p *MemoryProvider) CurrentSession(ctx context.Context, token string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.sessions[token]
	if !ok {
		return nil, nil
	}
	if !p.now().Before(session.ExpiresAt) {
		delete(p.sessions, token)
		return nil, nil
	}

	res := *session
	return &res, nil
}

func (p *MemoryProvider) SignUp(ctx context.Context, email, password string, meta Metadata) (*db.Identity, error) {
	email = normalizeEmail(email)

	if err := validateSignUp(email, password, meta); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password, p.cost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if _, ok := p.byEmail[email]; ok {
		p.mu.Unlock()
		return nil, types.NewAuthError(msgAlreadyRegistered)
	}

	now := p.now()
	identity := &db.Identity{
		Id:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		UserMetadata: metadataMap(meta),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.byEmail[email] = identity
	p.byId[identity.Id] = identity
	p.mu.Unlock()

	publish(ctx, p.bus, shared.SessionEventSignedUp, identity.Id)

	res := *identity
	return &res, nil
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	p.mu.Lock()
	identity, ok := p.byEmail[email]
	if !ok || !passwordMatches(identity.PasswordHash, password) {
		p.mu.Unlock()
		return nil, types.NewAuthError(msgInvalidCredentials)
	}

	now := p.now()
	idCopy := *identity
	session := &Session{
		Token:     uuid.New().String(),
		Identity:  &idCopy,
		CreatedAt: now,
		ExpiresAt: expiresAt(now),
	}
	p.sessions[session.Token] = session
	p.mu.Unlock()

	publish(ctx, p.bus, shared.SessionEventSignedIn, identity.Id)

	res := *session
	return &res, nil
}

func (p *MemoryProvider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	session, ok := p.sessions[token]
	delete(p.sessions, token)
	p.mu.Unlock()

	if ok {
		publish(ctx, p.bus, shared.SessionEventSignedOut, session.Identity.Id)
	}

	return nil
}

func (p *MemoryProvider) Subscribe(ctx context.Context) (<-chan events.SessionEvent, error) {
	if p.bus == nil {
		return nil, errors.New("no event bus configured")
	}
	return p.bus.Subscribe(ctx)
}

var _ Provider = (*MemoryProvider)(nil)
var _ Provider = (*DBProvider)(nil)
