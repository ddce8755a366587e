package session

import (
	"context"
	"sync"

	"github.com/careplanhq/portal-client/profile"
	"github.com/rs/zerolog"
)

// ProfileFetcher retrieves the authenticated user's profile from the portal
// API. A nil profile with a nil error means the server answered 200 with no
// usable body; the store treats that the same as an authentication failure.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (*profile.Profile, error)
}

// Store owns the process-wide authenticated session: the current token and
// the fetched user profile. Only the token is persisted across restarts.
// All reads and writes go through the store; consumers observe it via
// Snapshot and Subscribe.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *profile.Profile

	fetcher     ProfileFetcher
	storage     Storage
	logger      zerolog.Logger
	subscribers []func(Snapshot)
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithStorage sets the durable storage for the token. The store hydrates from
// it during construction, before any consumer can observe session state.
func WithStorage(storage Storage) StoreOption {
	return func(s *Store) {
		s.storage = storage
	}
}

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore initialises a session store. When storage is configured the token
// is rehydrated immediately; the profile is never rehydrated - it stays nil
// until FetchUser resolves. A failed or corrupt load collapses to an
// anonymous session rather than an error.
func NewStore(options ...StoreOption) *Store {
	s := &Store{logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}

	if s.storage != nil {
		ps, ok, err := s.storage.Load()
		if err != nil {
			s.logger.Error().Err(err).Msg("loading persisted session, starting anonymous")
		} else if ok {
			snap := HydrateSnapshot(ps)
			s.token = snap.Token
			if s.token != "" {
				s.logTokenClaims(s.token)
				s.logger.Debug().Msg("session token rehydrated")
			}
		}
	}
	return s
}

// SetProfileFetcher wires the API client in after construction. The store and
// the HTTP adapter reference each other, so one side binds late.
func (s *Store) SetProfileFetcher(fetcher ProfileFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetcher = fetcher
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Token: s.token, User: s.user}
}

// Token returns the current token and whether one is held.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Authenticated reports whether a token is currently held.
func (s *Store) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Subscribe registers fn to run after every observable state change.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Login installs a new token, clears any stale profile and kicks off the
// profile fetch asynchronously. Callers observing the store immediately after
// Login see User == nil even when the fetch will succeed. Login never fails;
// fetch failures are absorbed by FetchUser.
func (s *Store) Login(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()

	s.logTokenClaims(token)
	s.persist()
	s.notify()

	go s.FetchUser(ctx)
}

// Logout clears both token and profile. It is idempotent: clearing an already
// anonymous session is a no-op, and it never fails.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.token == "" && s.user == nil {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.persist()
	s.notify()
}

// ForceLogout is the eviction path used by the HTTP adapter after an
// unauthorized response. The authenticated check keeps concurrent failures
// from stacking redundant logouts; a race between two checks is harmless
// because Logout is idempotent.
func (s *Store) ForceLogout() {
	if !s.Authenticated() {
		return
	}
	s.logger.Warn().Msg("session evicted after unauthorized response")
	s.Logout()
}

// FetchUser re-derives the user profile from the server. Without a token it
// only ensures the profile is nil - no network call, not an error. Any fetch
// failure, and a 200 with an empty body, collapses the session to anonymous
// via Logout. There is no retry and no degraded state.
func (s *Store) FetchUser(ctx context.Context) {
	token, ok := s.Token()
	if !ok {
		s.mu.Lock()
		changed := s.user != nil
		s.user = nil
		s.mu.Unlock()
		if changed {
			s.notify()
		}
		return
	}

	s.mu.RLock()
	fetcher := s.fetcher
	s.mu.RUnlock()
	if fetcher == nil {
		s.logger.Error().Msg("no profile fetcher wired, cannot resolve session user")
		return
	}

	user, err := fetcher.FetchProfile(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("profile fetch failed, clearing session")
		s.Logout()
		return
	}
	if user == nil {
		s.logger.Warn().Msg("profile endpoint returned an empty body, clearing session")
		s.Logout()
		return
	}

	s.mu.Lock()
	if s.token != token {
		// Session changed while the fetch was in flight; the stale result
		// must not attach to the new token.
		s.mu.Unlock()
		return
	}
	s.user = user
	s.mu.Unlock()

	s.logger.Debug().Int64("user_id", user.UserID).Msg("session user resolved")
	s.notify()
}

// persist writes the durable subset of the session. Persistence is best
// effort from the caller's perspective: failures are logged, never surfaced,
// so Login and Logout stay infallible.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Save(Persistable(s.Snapshot())); err != nil {
		s.logger.Error().Err(err).Msg("persisting session token")
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()
	s.mu.RLock()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}
