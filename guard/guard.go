// Package guard gates access to protected views. Evaluate is a pure function
// of the current session snapshot - it never makes a server round trip - and
// is re-run whenever the session changes.
package guard

import (
	"sync"

	"github.com/careplanhq/portal-client/session"
	"github.com/rs/zerolog"
)

// Decision is the outcome of evaluating a path against the session.
type Decision struct {
	Allow      bool
	RedirectTo string // set when Allow is false
}

type Guard struct {
	loginPath string
	public    map[string]struct{}
	logger    zerolog.Logger
}

// Option defines a function type to modify the Guard instance.
type Option func(*Guard)

// WithPublicPaths marks additional paths that render without a session.
func WithPublicPaths(paths ...string) Option {
	return func(g *Guard) {
		for _, p := range paths {
			g.public[p] = struct{}{}
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New initialises a guard. The login path is always public.
func New(loginPath string, options ...Option) *Guard {
	g := &Guard{
		loginPath: loginPath,
		public:    map[string]struct{}{loginPath: {}},
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Evaluate decides whether path may render under the given session snapshot.
// A held token is enough: both authenticating and authenticated sessions pass,
// so protected views must tolerate a transiently nil profile. Without a token
// every protected path redirects to the login view.
func (g *Guard) Evaluate(snap session.Snapshot, path string) Decision {
	if _, ok := g.public[path]; ok {
		return Decision{Allow: true}
	}
	if snap.Authenticated() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: g.loginPath}
}

// SessionSource is the slice of the session store the watcher needs.
type SessionSource interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot))
}

// Watch re-evaluates on every session change and invokes redirect with the
// login path exactly when the session transitions to anonymous. Staying in a
// token-holding state, including authenticating → authenticated, is not
// guard-visible.
func (g *Guard) Watch(src SessionSource, redirect func(loginPath string)) {
	var mu sync.Mutex
	last := src.Snapshot().State()

	src.Subscribe(func(snap session.Snapshot) {
		mu.Lock()
		prev := last
		last = snap.State()
		current := last
		mu.Unlock()

		if current == session.StateAnonymous && prev != session.StateAnonymous {
			g.logger.Debug().Msg("session ended, redirecting to login")
			redirect(g.loginPath)
		}
	})
}
