package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/paragonmech/leadbook/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountCols = `id, name, email, password_hash, provider, subject_id, picture, created_at`

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := scanner.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash,
		&a.Provider, &a.SubjectID, &a.Picture, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountStore) Create(name, email, passwordHash, provider, subjectID, picture string) (*model.Account, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO accounts (id, name, email, password_hash, provider, subject_id, picture)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, email, passwordHash, provider, subjectID, picture,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return s.GetByID(id)
}

func (s *AccountStore) GetByID(id string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetByEmail matches case-insensitively; the email column is declared
// COLLATE NOCASE.
func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// LinkSubject attaches a federated identity to an existing account.
func (s *AccountStore) LinkSubject(id, subjectID, picture string) (*model.Account, error) {
	_, err := s.db.Exec(
		`UPDATE accounts SET subject_id = ?, picture = ? WHERE id = ?`,
		subjectID, picture, id,
	)
	if err != nil {
		return nil, fmt.Errorf("link subject: %w", err)
	}
	return s.GetByID(id)
}
