package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/ojpb2000/voice-chatbot-backend/internal/config"
	authmodel "github.com/ojpb2000/voice-chatbot-backend/internal/model/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// demoUserID identifies the single demo account.
const demoUserID = 1

// Service validates the configured demo credential and manages sessions.
type Service struct {
	cfg   config.AuthConfig
	store Store
}

// NewService wires the auth service to a session store.
func NewService(cfg config.AuthConfig, store Store) *Service {
	return &Service{cfg: cfg, store: store}
}

// Login checks the credential pair and, on match, mints a session token and
// stores the session record. Comparison is constant-time so the endpoint does
// not leak which of the two fields mismatched.
func (s *Service) Login(username, password string) (authmodel.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if !userOK || !passOK {
		return authmodel.Session{}, ErrInvalidCredentials
	}

	token, err := NewSessionToken()
	if err != nil {
		return authmodel.Session{}, err
	}

	session := authmodel.Session{
		ID:        token,
		UserID:    demoUserID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	s.store.Put(session)

	return session, nil
}

// Authenticate resolves a session token to its record.
func (s *Service) Authenticate(token string) (authmodel.Session, bool) {
	if token == "" {
		return authmodel.Session{}, false
	}
	return s.store.Get(token)
}

// Logout discards the session for the token, if any.
func (s *Service) Logout(token string) {
	if token == "" {
		return
	}
	s.store.Delete(token)
}
