package backoffice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL bounds a session when no TTL is configured.
const DefaultSessionTTL = 8 * time.Hour

const sessionIssuer = "recliq-backoffice"

// Session is the signed-in operator state. It replaces any process-wide user
// object: transports resolve it per request and pass it down explicitly.
type Session struct {
	ID        string        `json:"id"`
	User      ViewerContext `json:"user"`
	Drawer    DrawerState   `json:"drawer"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Viewer returns the session user tagged with the session id.
func (s Session) Viewer() ViewerContext {
	viewer := s.User
	viewer.SessionID = s.ID
	return viewer
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions. Load returns ErrSessionNotFound for unknown ids.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// InMemorySessionStore keeps sessions in process memory.
type InMemorySessionStore struct {
	mu   sync.RWMutex
	data map[string]Session
}

// NewInMemorySessionStore creates an empty store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{data: map[string]Session{}}
}

// Save stores or replaces a session.
func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = session
	return nil
}

// Load fetches a session by id.
func (s *InMemorySessionStore) Load(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.data[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// SessionManagerOptions configures a SessionManager.
type SessionManagerOptions struct {
	Store  SessionStore
	Secret []byte
	TTL    time.Duration
	Clock  func() time.Time
}

// SessionManager issues HS256 session tokens and owns session lifecycle.
type SessionManager struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ DrawerStore = (*SessionManager)(nil)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionManager validates options and applies defaults.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("backoffice: session secret is required")
	}
	if opts.Store == nil {
		opts.Store = NewInMemorySessionStore()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &SessionManager{
		store:  opts.Store,
		secret: append([]byte(nil), opts.Secret...),
		ttl:    opts.TTL,
		now:    opts.Clock,
	}, nil
}

// Begin creates and persists a session for user and returns its signed token.
func (m *SessionManager) Begin(ctx context.Context, user ViewerContext) (Session, string, error) {
	if user.UserID == "" {
		return Session{}, "", ErrMissingViewer
	}
	now := m.now().UTC()
	session := Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	session.User.SessionID = session.ID
	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("backoffice: sign session token: %w", err)
	}
	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, "", fmt.Errorf("backoffice: save session: %w", err)
	}
	return session, token, nil
}

// Resolve verifies token and loads its session.
func (m *SessionManager) Resolve(ctx context.Context, token string) (Session, error) {
	id, err := m.sessionID(token)
	if err != nil {
		return Session{}, err
	}
	session, err := m.store.Load(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if session.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return Session{}, fmt.Errorf("%w: %s expired", ErrSessionNotFound, id)
	}
	return session, nil
}

// End deletes the session behind token.
func (m *SessionManager) End(ctx context.Context, token string) error {
	id, err := m.sessionID(token)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("backoffice: delete session: %w", err)
	}
	return nil
}

// SetDrawer stores the drawer selection on a session.
func (m *SessionManager) SetDrawer(ctx context.Context, sessionID string, state DrawerState) error {
	session, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Drawer = state
	return m.store.Save(ctx, session)
}

// Drawer returns the drawer selection of a session.
func (m *SessionManager) Drawer(ctx context.Context, sessionID string) (DrawerState, error) {
	session, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return DrawerState{}, err
	}
	return session.Drawer, nil
}

func (m *SessionManager) sessionID(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.SessionID, nil
}
