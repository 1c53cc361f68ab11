package accounts

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// Consumer is a registered account holder.
type Consumer struct {
	Name          string
	Address       string
	ContactNumber string
	PasswordHash  string
	CANumber      string
}

// SupportRequest is a submitted support ticket.
type SupportRequest struct {
	CANumber string
	Name     string
	Subject  string
}

// ErrNotFound marks lookups for consumers that do not exist.
var ErrNotFound = errors.New("accounts: consumer not found")

// ConsumerRepository persists consumer accounts.
type ConsumerRepository interface {
	Insert(ctx context.Context, consumer Consumer) error
	GetByName(ctx context.Context, name string) (*Consumer, error)
}

// SupportRepository persists support tickets.
type SupportRepository interface {
	Insert(ctx context.Context, request SupportRequest) error
	List(ctx context.Context) ([]SupportRequest, error)
}

// NewCANumber generates a random 10-digit consumer account number.
func NewCANumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
	if err != nil {
		return "0000000000"
	}
	return strconv.FormatInt(n.Int64()+1_000_000_000, 10)
}
