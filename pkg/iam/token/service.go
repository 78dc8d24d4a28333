package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// Token types carried in the custom claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Pair is one issued access+refresh pair.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}

// Claims are the JWT claims minted by this service.
type Claims struct {
	Email     string      `json:"email,omitempty"`
	Name      string      `json:"name,omitempty"`
	Role      kernel.Role `json:"role"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Service issues, refreshes, revokes and verifies the session tokens. Access
// and refresh tokens are signed with distinct secrets so one can never be
// replayed as the other even if the type claim were ignored.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	store         kernel.TTLStore
	directory     principal.Directory
}

// NewService creates the token issuer. Zero TTLs fall back to 24h access /
// 7d refresh.
func NewService(cfg Config, store kernel.TTLStore, directory principal.Directory) *Service {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "pressroom"
	}

	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		store:         store,
		directory:     directory,
	}
}

// RefreshTTL exposes the refresh lifetime for cookie max-age.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func blacklistKey(token string) string {
	return fmt.Sprintf("token:blacklist:%s", token)
}

// Issue mints a fresh access+refresh pair for the principal.
func (s *Service) Issue(p *principal.Principal) (*Pair, error) {
	access, err := s.sign(p, TypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, ErrGenerationFailed(err)
	}

	refresh, err := s.sign(p, TypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, ErrGenerationFailed(err)
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(p *principal.Principal, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Role:      p.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if tokenType == TypeAccess {
		claims.Email = p.Email
		claims.Name = p.Name
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) parse(tokenString string, secret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired()
		}
		return nil, ErrInvalid().WithDetail("reason", "parse failed")
	}
	if !parsed.Valid {
		return nil, ErrInvalid()
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalid()
	}
	return claims, nil
}

// Refresh verifies a refresh token and mints a brand-new pair. The prior
// refresh token is not blacklisted; it stays technically valid until its own
// expiry. Known gap, documented in DESIGN.md.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Pair, error) {
	claims, err := s.parse(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeRefresh {
		return nil, ErrWrongType()
	}

	p, err := s.directory.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrStoreFailure(err)
	}
	if p == nil {
		return nil, ErrInvalid().WithDetail("reason", "unknown subject")
	}
	if !p.IsActive {
		return nil, ErrUserInactive()
	}

	return s.Issue(p)
}

// Revoke blacklists an access token for the remainder of its lifetime, so
// entries self-expire and the blacklist never grows unboundedly. Revoking an
// already-expired token is a no-op.
func (s *Service) Revoke(ctx context.Context, accessToken string) error {
	claims, err := s.parse(accessToken, s.accessSecret, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return ErrInvalid().WithDetail("reason", "missing expiry")
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	if err := s.store.Set(ctx, blacklistKey(accessToken), "revoked", remaining); err != nil {
		return ErrStoreFailure(err)
	}
	return nil
}

// VerifyAccess validates an access token and returns its principal.
// Cheapest checks first: signature/expiry, then blacklist membership, then
// the directory active flag. Blacklist store failures are fail-closed; an
// unreadable blacklist must not let revoked tokens through.
func (s *Service) VerifyAccess(ctx context.Context, accessToken string) (*principal.Principal, error) {
	claims, err := s.parse(accessToken, s.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeAccess {
		return nil, ErrWrongType()
	}

	_, revoked, err := s.store.Get(ctx, blacklistKey(accessToken))
	if err != nil {
		return nil, ErrStoreFailure(err)
	}
	if revoked {
		return nil, ErrRevoked()
	}

	p, err := s.directory.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrStoreFailure(err)
	}
	if p == nil {
		return nil, ErrInvalid().WithDetail("reason", "unknown subject")
	}
	if !p.IsActive {
		return nil, ErrUserInactive()
	}

	return p, nil
}
