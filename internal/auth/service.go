package auth

import (
	"github.com/rs/zerolog"
)

// Service composes the operator credential check with the session
// table. It is the AuthService the handlers talk to.
type Service struct {
	creds    *Credentials
	sessions *SessionManager
	logger   zerolog.Logger
}

func NewService(creds *Credentials, sessions *SessionManager, logger zerolog.Logger) *Service {
	return &Service{
		creds:    creds,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Login verifies the credential pair and issues a session. The secret
// is never logged.
func (s *Service) Login(username, secret string) (Session, error) {
	if err := s.creds.Verify(username, secret); err != nil {
		s.logger.Warn().Str("username", username).Msg("login rejected")
		return Session{}, err
	}
	session, err := s.sessions.Create(username)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info().Str("username", username).Msg("login succeeded")
	return session, nil
}

// Validate resolves a session token to its username, refreshing the
// sliding expiry window.
func (s *Service) Validate(token string) (string, error) {
	return s.sessions.Validate(token)
}

// Logout invalidates the session token.
func (s *Service) Logout(token string) {
	s.sessions.Invalidate(token)
}

// Active reports the number of live sessions.
func (s *Service) Active() int {
	return s.sessions.Active()
}
