package otpsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressroom-io/pressroom/pkg/asyncx"
	"github.com/pressroom-io/pressroom/pkg/iam/login"
	"github.com/pressroom-io/pressroom/pkg/iam/otp"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"github.com/pressroom-io/pressroom/pkg/iam/token"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/logx"
)

// Config holds the challenge parameters.
type Config struct {
	TTL         time.Duration
	CodeLength  int
	MaxAttempts int
	MaxResends  int
}

// Service manages the one-time-code step of the login flow: issuing a
// challenge after a correct password, verifying submitted codes, and
// resending fresh codes.
type Service struct {
	store     kernel.TTLStore
	notifier  otp.Notifier
	directory principal.Directory
	tokens    *token.Service

	ttl         time.Duration
	codeLength  int
	maxAttempts int
	maxResends  int
}

// NewService creates the challenge manager. Zero config fields fall back to
// the production defaults (600s TTL, 6 digits, 3 attempts, 3 resends).
func NewService(store kernel.TTLStore, notifier otp.Notifier, directory principal.Directory, tokens *token.Service, cfg Config) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.CodeLength == 0 {
		cfg.CodeLength = 6
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxResends == 0 {
		cfg.MaxResends = 3
	}
	return &Service{
		store:       store,
		notifier:    notifier,
		directory:   directory,
		tokens:      tokens,
		ttl:         cfg.TTL,
		codeLength:  cfg.CodeLength,
		maxAttempts: cfg.MaxAttempts,
		maxResends:  cfg.MaxResends,
	}
}

func challengeKey(tok string) string {
	return fmt.Sprintf("otp:challenge:%s", tok)
}

// IssueResult is the step-1 login response.
type IssueResult struct {
	Token       string `json:"otp_token"`
	MaskedEmail string `json:"masked_email"`
	ExpiresIn   int    `json:"expires_in"`
}

// VerifyResult is the successful step-2 outcome.
type VerifyResult struct {
	Principal *principal.Principal
	Tokens    *token.Pair
}

// ResendResult reports resend usage.
type ResendResult struct {
	ResendCount      int `json:"resend_count"`
	RemainingResends int `json:"remaining_resends"`
}

// Issue creates a challenge for a password-verified principal and dispatches
// the code. A failed dispatch is logged but keeps the challenge stored; the
// user recovers through resend.
func (s *Service) Issue(ctx context.Context, p *principal.Principal) (*IssueResult, error) {
	tok, err := otp.GenerateToken()
	if err != nil {
		return nil, otp.ErrStoreFailure(err)
	}
	code, err := otp.GenerateCode(s.codeLength)
	if err != nil {
		return nil, otp.ErrStoreFailure(err)
	}

	ch := otp.Challenge{
		UserID:    p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Code:      code,
		CreatedAt: time.Now(),
	}
	if err := s.persist(ctx, tok, ch); err != nil {
		return nil, err
	}

	s.dispatch(ctx, ch)

	return &IssueResult{
		Token:       tok,
		MaskedEmail: otp.MaskEmail(p.Email),
		ExpiresIn:   int(s.ttl / time.Second),
	}, nil
}

// Verify checks a submitted code against the challenge behind the opaque
// token. A match consumes the challenge and yields tokens; a mismatch burns
// an attempt and re-persists with a fresh TTL.
func (s *Service) Verify(ctx context.Context, tok, code string) (*VerifyResult, error) {
	ch, err := s.load(ctx, tok)
	if err != nil {
		return nil, err
	}

	if ch.Attempts >= s.maxAttempts {
		// Exhausted challenges burn on the submission that observes them,
		// correct code or not, forcing a restart from the password step.
		s.delete(ctx, tok)
		return nil, otp.ErrAttemptsExhausted()
	}

	if ch.Code != code {
		ch.Attempts++
		if err := s.persist(ctx, tok, *ch); err != nil {
			return nil, err
		}
		return nil, otp.ErrMismatch(s.maxAttempts - ch.Attempts)
	}

	p, err := s.directory.FindByID(ctx, ch.UserID.String())
	if err != nil {
		return nil, login.ErrDependencyFailure(err)
	}
	if p == nil || !p.IsActive {
		s.delete(ctx, tok)
		return nil, login.ErrAccountInactive()
	}

	pair, err := s.tokens.Issue(p)
	if err != nil {
		return nil, err
	}

	s.delete(ctx, tok)
	return &VerifyResult{Principal: p, Tokens: pair}, nil
}

// Resend regenerates the code on an existing challenge, resets its attempt
// counter and redispatches. Capped per challenge.
func (s *Service) Resend(ctx context.Context, tok string) (*ResendResult, error) {
	ch, err := s.load(ctx, tok)
	if err != nil {
		return nil, err
	}

	if ch.ResendCount >= s.maxResends {
		return nil, otp.ErrResendExhausted()
	}

	code, err := otp.GenerateCode(s.codeLength)
	if err != nil {
		return nil, otp.ErrStoreFailure(err)
	}

	ch.Code = code
	ch.Attempts = 0
	ch.ResendCount++
	if err := s.persist(ctx, tok, *ch); err != nil {
		return nil, err
	}

	s.dispatch(ctx, *ch)

	return &ResendResult{
		ResendCount:      ch.ResendCount,
		RemainingResends: s.maxResends - ch.ResendCount,
	}, nil
}

func (s *Service) load(ctx context.Context, tok string) (*otp.Challenge, error) {
	raw, found, err := s.store.Get(ctx, challengeKey(tok))
	if err != nil {
		return nil, otp.ErrStoreFailure(err)
	}
	if !found {
		return nil, otp.ErrSessionNotFound()
	}

	var ch otp.Challenge
	if err := json.Unmarshal([]byte(raw), &ch); err != nil {
		s.delete(ctx, tok)
		return nil, otp.ErrSessionNotFound()
	}
	return &ch, nil
}

func (s *Service) persist(ctx context.Context, tok string, ch otp.Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return otp.ErrStoreFailure(err)
	}
	if err := s.store.Set(ctx, challengeKey(tok), string(data), s.ttl); err != nil {
		return otp.ErrStoreFailure(err)
	}
	return nil
}

func (s *Service) delete(ctx context.Context, tok string) {
	if err := s.store.Del(ctx, challengeKey(tok)); err != nil {
		logx.WithError(err).Warn("otp: failed to delete challenge")
	}
}

func (s *Service) dispatch(ctx context.Context, ch otp.Challenge) {
	_, err := asyncx.RetryWithBackoff(ctx, 2, 200*time.Millisecond,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.notifier.SendCode(ctx, ch.Email, ch.Name, ch.Code)
		})
	if err != nil {
		logx.WithError(err).WithField("user_id", ch.UserID).
			Error("otp: code delivery failed; challenge kept for resend")
	}
}
