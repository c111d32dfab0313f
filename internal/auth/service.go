package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/paragonmech/leadbook/internal/model"
	"github.com/paragonmech/leadbook/internal/store"
)

// minPasswordLength is the signup password policy.
const minPasswordLength = 6

var (
	ErrDuplicateAccount  = errors.New("an account with this email already exists")
	ErrAccountNotFound   = errors.New("no account found with this email")
	ErrInvalidCredential = errors.New("incorrect password")
	ErrPasswordTooShort  = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// Service implements signup, login, federated login, and logout. All session
// state lives in the session store; callers identify themselves by session
// token.
type Service struct {
	accounts *store.AccountStore
	sessions *store.SessionStore
	verifier TokenVerifier
}

func NewService(accounts *store.AccountStore, sessions *store.SessionStore, verifier TokenVerifier) *Service {
	return &Service{accounts: accounts, sessions: sessions, verifier: verifier}
}

// Signup creates a password account and opens a session for it.
func (s *Service) Signup(name, email, password string) (*model.Session, error) {
	email = normalizeEmail(email)
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(strings.TrimSpace(name), email, string(hash), model.ProviderEmail, "", "")
	if err != nil {
		return nil, err
	}
	return s.sessions.Create(account)
}

// Login authenticates a password account and opens a session.
func (s *Service) Login(email, password string) (*model.Session, error) {
	account, err := s.accounts.GetByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.PasswordHash == "" {
		// Federated-only account; there is no password to match.
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return s.sessions.Create(account)
}

// LoginWithToken verifies a federated identity token, finds or creates the
// matching account, and opens a session. An account that signed up with a
// password gets the federated subject and picture linked onto it.
func (s *Service) LoginWithToken(token string) (*model.Session, error) {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(identity.Email)
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	switch {
	case account == nil:
		account, err = s.accounts.Create(identity.Name, email, "", model.ProviderGoogle, identity.Subject, identity.Picture)
	case account.SubjectID == "":
		account, err = s.accounts.LinkSubject(account.ID, identity.Subject, identity.Picture)
	}
	if err != nil {
		return nil, err
	}
	return s.sessions.Create(account)
}

// Logout destroys the session. Unknown tokens are a no-op.
func (s *Service) Logout(token string) error {
	return s.sessions.DeleteByToken(token)
}

// CurrentUser returns the session for a token, or nil when logged out.
func (s *Service) CurrentUser(token string) (*model.Session, error) {
	return s.sessions.GetByToken(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
