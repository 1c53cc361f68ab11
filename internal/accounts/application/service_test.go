package application

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	accounts "smartwaste-cloud/internal/accounts/domain"
)

type memoryConsumerRepo struct {
	byName    map[string]accounts.Consumer
	insertErr error
}

func newMemoryConsumerRepo() *memoryConsumerRepo {
	return &memoryConsumerRepo{byName: make(map[string]accounts.Consumer)}
}

func (r *memoryConsumerRepo) Insert(_ context.Context, consumer accounts.Consumer) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.byName[consumer.Name] = consumer
	return nil
}

func (r *memoryConsumerRepo) GetByName(_ context.Context, name string) (*accounts.Consumer, error) {
	consumer, ok := r.byName[name]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return &consumer, nil
}

type memorySupportRepo struct {
	requests  []accounts.SupportRequest
	insertErr error
}

func (r *memorySupportRepo) Insert(_ context.Context, request accounts.SupportRequest) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.requests = append(r.requests, request)
	return nil
}

func (r *memorySupportRepo) List(_ context.Context) ([]accounts.SupportRequest, error) {
	return r.requests, nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(name, caNumber string) (string, error) {
	return "token-" + name + "-" + caNumber, nil
}

func newTestService(t *testing.T, consumers *memoryConsumerRepo, tickets *memorySupportRepo) *Service {
	t.Helper()
	service, err := NewService(consumers, tickets, stubIssuer{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestRegisterHashesPasswordAndAssignsCANumber(t *testing.T) {
	consumers := newMemoryConsumerRepo()
	service := newTestService(t, consumers, &memorySupportRepo{})

	caNumber, err := service.Register(context.Background(), "alice", "12 Main St", "9876543210", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(caNumber) != 10 {
		t.Fatalf("expected 10-digit ca number, got %q", caNumber)
	}

	stored := consumers.byName["alice"]
	if stored.PasswordHash == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	consumers := newMemoryConsumerRepo()
	service := newTestService(t, consumers, &memorySupportRepo{})

	caNumber, err := service.Register(context.Background(), "alice", "12 Main St", "9876543210", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	consumer, token, err := service.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if consumer.CANumber != caNumber {
		t.Fatalf("unexpected ca number %q", consumer.CANumber)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	consumers := newMemoryConsumerRepo()
	service := newTestService(t, consumers, &memorySupportRepo{})

	if _, err := service.Register(context.Background(), "alice", "", "", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := service.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
}

func TestLoginUnknownConsumer(t *testing.T) {
	service := newTestService(t, newMemoryConsumerRepo(), &memorySupportRepo{})
	if _, _, err := service.Login(context.Background(), "nobody", "x"); !errors.Is(err, accounts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenTicketStoresRequest(t *testing.T) {
	tickets := &memorySupportRepo{}
	service := newTestService(t, newMemoryConsumerRepo(), tickets)

	if err := service.OpenTicket(context.Background(), "1234567890", "alice", "bin overflowing"); err != nil {
		t.Fatalf("open ticket: %v", err)
	}
	if len(tickets.requests) != 1 || tickets.requests[0].Subject != "bin overflowing" {
		t.Fatalf("unexpected tickets: %+v", tickets.requests)
	}
}

func TestRegisterPersistenceFailure(t *testing.T) {
	consumers := newMemoryConsumerRepo()
	consumers.insertErr = errors.New("db down")
	service := newTestService(t, consumers, &memorySupportRepo{})

	if _, err := service.Register(context.Background(), "alice", "", "", "hunter2"); err == nil {
		t.Fatal("expected error when the store fails")
	}
}
