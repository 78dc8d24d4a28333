package login_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pressroom-io/pressroom/pkg/errx"
	"github.com/pressroom-io/pressroom/pkg/iam/lockout"
	"github.com/pressroom-io/pressroom/pkg/iam/login"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/kernel/kvmemory"
)

// fakeDirectory is an in-memory credential directory with one password for
// all users.
type fakeDirectory struct {
	users    map[string]*principal.Principal
	password string
}

func (f *fakeDirectory) FindByIdentifier(_ context.Context, identifier string) (*principal.Principal, error) {
	p, ok := f.users[strings.ToLower(identifier)]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeDirectory) FindByID(_ context.Context, id string) (*principal.Principal, error) {
	for _, p := range f.users {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) VerifyPassword(p *principal.Principal, password string) bool {
	return p != nil && password == f.password
}

func newFixture(now *time.Time) (*login.Service, *fakeDirectory) {
	store := kvmemory.NewWithClock(func() time.Time { return *now })
	dir := &fakeDirectory{
		password: "correct-horse",
		users: map[string]*principal.Principal{
			"a@b.com": {
				ID:       kernel.NewUserID("u-1"),
				Email:    "a@b.com",
				Name:     "Ana",
				Role:     kernel.RoleEditor,
				IsActive: true,
			},
			"off@b.com": {
				ID:       kernel.NewUserID("u-2"),
				Email:    "off@b.com",
				Role:     kernel.RoleReader,
				IsActive: false,
			},
		},
	}
	return login.NewService(dir, lockout.NewTracker(store, lockout.Config{})), dir
}

func TestValidateLoginSuccess(t *testing.T) {
	now := time.Now()
	svc, _ := newFixture(&now)

	p, err := svc.ValidateLogin(context.Background(), "a@b.com", "correct-horse", "1.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "u-1" {
		t.Fatalf("wrong principal: %+v", p)
	}
}

func TestValidateLoginWrongPassword(t *testing.T) {
	now := time.Now()
	svc, _ := newFixture(&now)

	_, err := svc.ValidateLogin(context.Background(), "a@b.com", "nope", "1.1.1.1")
	if !errx.Is(err, login.ErrInvalidCredentials()) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestValidateLoginUnknownIdentifier(t *testing.T) {
	now := time.Now()
	svc, _ := newFixture(&now)

	_, err := svc.ValidateLogin(context.Background(), "ghost@b.com", "whatever", "1.1.1.1")
	if !errx.Is(err, login.ErrInvalidCredentials()) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	// Failures still count against unknown identifiers: five more lock it.
	for i := 0; i < 4; i++ {
		svc.ValidateLogin(context.Background(), "ghost@b.com", "whatever", "1.1.1.1")
	}
	_, err = svc.ValidateLogin(context.Background(), "ghost@b.com", "whatever", "1.1.1.1")
	if !errx.Is(err, login.ErrAccountLocked()) {
		t.Fatalf("expected lock for hammered unknown identifier, got %v", err)
	}
}

func TestValidateLoginInactiveAccount(t *testing.T) {
	now := time.Now()
	svc, _ := newFixture(&now)

	_, err := svc.ValidateLogin(context.Background(), "off@b.com", "correct-horse", "1.1.1.1")
	if !errx.Is(err, login.ErrAccountInactive()) {
		t.Fatalf("expected inactive error, got %v", err)
	}
}

func TestLockoutAfterFiveFailuresThenExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _ := newFixture(&now)

	for i := 0; i < 5; i++ {
		_, err := svc.ValidateLogin(ctx, "a@b.com", "wrong", "1.1.1.1")
		if !errx.Is(err, login.ErrInvalidCredentials()) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i+1, err)
		}
	}

	// 6th attempt is answered with the lock, password correctness ignored.
	_, err := svc.ValidateLogin(ctx, "a@b.com", "correct-horse", "1.1.1.1")
	if !errx.Is(err, login.ErrAccountLocked()) {
		t.Fatalf("expected locked, got %v", err)
	}

	// After the lock TTL a correct password succeeds again.
	now = now.Add(16 * time.Minute)
	p, err := svc.ValidateLogin(ctx, "a@b.com", "correct-horse", "1.1.1.1")
	if err != nil {
		t.Fatalf("expected success after lock expiry, got %v", err)
	}
	if p.Email != "a@b.com" {
		t.Fatalf("wrong principal: %+v", p)
	}
}

func TestSuccessClearsFailureCounter(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _ := newFixture(&now)

	for i := 0; i < 4; i++ {
		svc.ValidateLogin(ctx, "a@b.com", "wrong", "1.1.1.1")
	}
	if _, err := svc.ValidateLogin(ctx, "a@b.com", "correct-horse", "1.1.1.1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	// Counter was cleared: four fresh failures must not lock.
	for i := 0; i < 4; i++ {
		_, err := svc.ValidateLogin(ctx, "a@b.com", "wrong", "1.1.1.1")
		if !errx.Is(err, login.ErrInvalidCredentials()) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
	}
}
