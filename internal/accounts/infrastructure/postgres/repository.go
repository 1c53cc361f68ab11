package postgres

import (
	"context"
	"database/sql"
	"errors"

	accounts "smartwaste-cloud/internal/accounts/domain"
)

// ConsumerRepository persists consumer accounts in postgres.
type ConsumerRepository struct {
	db *sql.DB
}

// NewConsumerRepository constructs a consumer repository.
func NewConsumerRepository(db *sql.DB) *ConsumerRepository {
	if db == nil {
		return nil
	}
	return &ConsumerRepository{db: db}
}

// Insert stores a new consumer account.
func (r *ConsumerRepository) Insert(ctx context.Context, consumer accounts.Consumer) error {
	if r == nil || r.db == nil {
		return errors.New("consumer repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO consumers (name, address, contact_number, password_hash, ca_number)
VALUES ($1, $2, $3, $4, $5)`,
		consumer.Name, consumer.Address, consumer.ContactNumber, consumer.PasswordHash, consumer.CANumber)
	return err
}

// GetByName loads one consumer by name.
func (r *ConsumerRepository) GetByName(ctx context.Context, name string) (*accounts.Consumer, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("consumer repo: nil db")
	}
	var consumer accounts.Consumer
	err := r.db.QueryRowContext(ctx, `
SELECT name, address, contact_number, password_hash, ca_number
FROM consumers
WHERE name = $1`, name).Scan(
		&consumer.Name, &consumer.Address, &consumer.ContactNumber, &consumer.PasswordHash, &consumer.CANumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &consumer, nil
}

// SupportRepository persists support tickets in postgres.
type SupportRepository struct {
	db *sql.DB
}

// NewSupportRepository constructs a support repository.
func NewSupportRepository(db *sql.DB) *SupportRepository {
	if db == nil {
		return nil
	}
	return &SupportRepository{db: db}
}

// Insert stores a support request.
func (r *SupportRepository) Insert(ctx context.Context, request accounts.SupportRequest) error {
	if r == nil || r.db == nil {
		return errors.New("support repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO support_requests (ca_number, name, subject)
VALUES ($1, $2, $3)`,
		request.CANumber, request.Name, request.Subject)
	return err
}

// List returns all support requests, newest first.
func (r *SupportRepository) List(ctx context.Context) ([]accounts.SupportRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("support repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT ca_number, name, subject
FROM support_requests
ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []accounts.SupportRequest
	for rows.Next() {
		var request accounts.SupportRequest
		if err := rows.Scan(&request.CANumber, &request.Name, &request.Subject); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
