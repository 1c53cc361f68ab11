package application

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	accounts "smartwaste-cloud/internal/accounts/domain"
)

// ErrBadPassword marks login attempts with a wrong password.
var ErrBadPassword = errors.New("accounts: invalid password")

// TokenIssuer signs session tokens for logged-in consumers.
type TokenIssuer interface {
	Issue(name, caNumber string) (string, error)
}

// Service implements consumer registration, login, and support tickets.
type Service struct {
	consumers accounts.ConsumerRepository
	tickets   accounts.SupportRepository
	tokens    TokenIssuer
}

// NewService constructs the account service.
func NewService(consumers accounts.ConsumerRepository, tickets accounts.SupportRepository, tokens TokenIssuer) (*Service, error) {
	if consumers == nil {
		return nil, errors.New("accounts service: nil consumer repository")
	}
	if tickets == nil {
		return nil, errors.New("accounts service: nil support repository")
	}
	if tokens == nil {
		return nil, errors.New("accounts service: nil token issuer")
	}
	return &Service{consumers: consumers, tickets: tickets, tokens: tokens}, nil
}

// Register creates an account with a bcrypt-hashed password and returns the
// assigned consumer account number.
func (s *Service) Register(ctx context.Context, name, address, contactNumber, password string) (string, error) {
	if name == "" || password == "" {
		return "", errors.New("accounts service: name and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("accounts service: hash password: %w", err)
	}

	consumer := accounts.Consumer{
		Name:          name,
		Address:       address,
		ContactNumber: contactNumber,
		PasswordHash:  string(hash),
		CANumber:      accounts.NewCANumber(),
	}
	if err := s.consumers.Insert(ctx, consumer); err != nil {
		return "", fmt.Errorf("accounts service: insert consumer: %w", err)
	}
	return consumer.CANumber, nil
}

// Login verifies the password for a consumer looked up by name and returns
// the consumer together with a signed session token.
func (s *Service) Login(ctx context.Context, name, password string) (*accounts.Consumer, string, error) {
	consumer, err := s.consumers.GetByName(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(consumer.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrBadPassword
	}
	token, err := s.tokens.Issue(consumer.Name, consumer.CANumber)
	if err != nil {
		return nil, "", fmt.Errorf("accounts service: issue token: %w", err)
	}
	return consumer, token, nil
}

// OpenTicket stores a support request.
func (s *Service) OpenTicket(ctx context.Context, caNumber, name, subject string) error {
	if err := s.tickets.Insert(ctx, accounts.SupportRequest{CANumber: caNumber, Name: name, Subject: subject}); err != nil {
		return fmt.Errorf("accounts service: insert ticket: %w", err)
	}
	return nil
}

// Tickets lists all stored support requests.
func (s *Service) Tickets(ctx context.Context) ([]accounts.SupportRequest, error) {
	return s.tickets.List(ctx)
}
