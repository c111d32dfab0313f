package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/paragonmech/leadbook/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

const sessionCols = `id, token, account_id, name, email, picture, provider, login_at`

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var sess model.Session
	err := scanner.Scan(
		&sess.ID, &sess.Token, &sess.AccountID, &sess.Name,
		&sess.Email, &sess.Picture, &sess.Provider, &sess.LoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Create opens a session for the account, copying its public fields.
// Sessions carry no expiry; only Delete ends them.
func (s *SessionStore) Create(account *model.Account) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (token, account_id, name, email, picture, provider)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		token, account.ID, account.Name, account.Email, account.Picture, account.Provider,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s.GetByToken(token)
}

func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token = ?`, token)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// DeleteByToken destroys a session. Unknown tokens are a no-op.
func (s *SessionStore) DeleteByToken(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
