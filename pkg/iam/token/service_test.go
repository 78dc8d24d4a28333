package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/pressroom-io/pressroom/pkg/errx"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"github.com/pressroom-io/pressroom/pkg/iam/token"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/kernel/kvmemory"
)

type fakeDirectory struct {
	byID map[string]*principal.Principal
}

func (f *fakeDirectory) FindByIdentifier(_ context.Context, _ string) (*principal.Principal, error) {
	return nil, nil
}

func (f *fakeDirectory) FindByID(_ context.Context, id string) (*principal.Principal, error) {
	return f.byID[id], nil
}

func (f *fakeDirectory) VerifyPassword(_ *principal.Principal, _ string) bool { return false }

func testPrincipal() *principal.Principal {
	return &principal.Principal{
		ID:       kernel.NewUserID("u-1"),
		Email:    "a@b.com",
		Name:     "Ana",
		Role:     kernel.RoleEditor,
		IsActive: true,
	}
}

func newService(ttl time.Duration) (*token.Service, *fakeDirectory) {
	p := testPrincipal()
	dir := &fakeDirectory{byID: map[string]*principal.Principal{"u-1": p}}
	svc := token.NewService(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     ttl,
		RefreshTTL:    ttl,
	}, kvmemory.New(), dir)
	return svc, dir
}

func TestIssueAndVerifyAccess(t *testing.T) {
	svc, _ := newService(time.Hour)

	pair, err := svc.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens populated")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	p, err := svc.VerifyAccess(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.ID != "u-1" || p.Role != kernel.RoleEditor {
		t.Fatalf("wrong principal: %+v", p)
	}
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	svc, _ := newService(time.Hour)

	pair, err := svc.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// The refresh token is signed with a different secret, so it fails
	// verification before the type claim is even consulted.
	if _, err := svc.VerifyAccess(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("expected refresh token rejected at the access endpoint")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newService(time.Hour)

	pair, err := svc.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("expected access token rejected at the refresh endpoint")
	}
}

func TestRevokeBlacklistsToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(time.Hour)

	pair, err := svc.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.VerifyAccess(ctx, pair.AccessToken); err != nil {
		t.Fatalf("verify before revoke: %v", err)
	}

	if err := svc.Revoke(ctx, pair.AccessToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err = svc.VerifyAccess(ctx, pair.AccessToken)
	if !errx.Is(err, token.ErrRevoked()) {
		t.Fatalf("expected revoked, got %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(time.Hour)

	pair, _ := svc.Issue(testPrincipal())
	if err := svc.Revoke(ctx, pair.AccessToken); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := svc.Revoke(ctx, pair.AccessToken); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	svc, _ := newService(-time.Minute)

	pair, err := svc.Issue(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = svc.VerifyAccess(context.Background(), pair.AccessToken)
	if !errx.Is(err, token.ErrExpired()) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestVerifyInactivePrincipal(t *testing.T) {
	svc, dir := newService(time.Hour)

	pair, _ := svc.Issue(testPrincipal())
	dir.byID["u-1"].IsActive = false

	_, err := svc.VerifyAccess(context.Background(), pair.AccessToken)
	if !errx.Is(err, token.ErrUserInactive()) {
		t.Fatalf("expected inactive, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	svc, _ := newService(time.Hour)

	_, err := svc.VerifyAccess(context.Background(), "not-a-jwt")
	if !errx.Is(err, token.ErrInvalid()) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestRefreshMintsNewPair(t *testing.T) {
	svc, _ := newService(time.Hour)

	pair, _ := svc.Issue(testPrincipal())

	// Claims carry second-granularity timestamps.
	time.Sleep(1100 * time.Millisecond)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.AccessToken == pair.AccessToken {
		t.Fatal("expected a fresh access token")
	}
	if _, err := svc.VerifyAccess(context.Background(), next.AccessToken); err != nil {
		t.Fatalf("verify refreshed token: %v", err)
	}
}
