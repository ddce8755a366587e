package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// logTokenClaims peeks at the token purely for diagnostics. The token is
// opaque to all session logic; when it happens to be a JWT its expiry and
// subject are worth a debug line, nothing more. The signature is never
// verified here - the server is the only party that validates tokens.
func (s *Store) logTokenClaims(token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.logger.Debug().Msg("session token is not a JWT, treating as opaque")
		return
	}

	evt := s.logger.Debug()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		evt = evt.Time("token_expiry", exp.Time)
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		evt = evt.Str("token_subject", sub)
	}
	evt.Msg("session token claims")
}
