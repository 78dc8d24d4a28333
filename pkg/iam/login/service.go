package login

import (
	"context"
	"time"

	"github.com/pressroom-io/pressroom/pkg/iam/lockout"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"github.com/pressroom-io/pressroom/pkg/logx"
)

// Service validates the password step of the login flow, consulting the
// lockout tracker before and after the credential check.
type Service struct {
	directory principal.Directory
	lockouts  *lockout.Tracker
}

// NewService creates the credential validator.
func NewService(directory principal.Directory, lockouts *lockout.Tracker) *Service {
	return &Service{
		directory: directory,
		lockouts:  lockouts,
	}
}

// ValidateLogin runs the step-1 login check.
//
// The lock state is checked before the password so a locked identifier gets
// the same answer whether or not the password is right; that keeps the
// response from leaking which of the two applies. Unknown identifiers are
// answered exactly like a wrong password, but the failure is still counted
// against the identifier. Lockout store failures are treated as fatal here
// (fail-closed): skipping the check would turn an outage into a brute-force
// window.
func (s *Service) ValidateLogin(ctx context.Context, identifier, password, ip string) (*principal.Principal, error) {
	locked, err := s.lockouts.IsLocked(ctx, identifier)
	if err != nil {
		return nil, ErrDependencyFailure(err)
	}
	if locked {
		return nil, ErrAccountLocked()
	}

	p, err := s.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, ErrDependencyFailure(err)
	}
	if p == nil {
		s.recordFailure(ctx, identifier, ip)
		return nil, ErrInvalidCredentials()
	}

	if !p.IsActive {
		return nil, ErrAccountInactive()
	}

	if !s.directory.VerifyPassword(p, password) {
		s.recordFailure(ctx, identifier, ip)
		return nil, ErrInvalidCredentials()
	}

	if err := s.lockouts.Clear(ctx, identifier); err != nil {
		// Stale counters only shorten the next lockout window; not worth
		// failing a correct login over.
		logx.WithError(err).WithField("identifier", identifier).
			Warn("login: failed to clear lockout counters")
	}

	return p, nil
}

func (s *Service) recordFailure(ctx context.Context, identifier, ip string) {
	count, lockedNow, err := s.lockouts.RecordFailure(ctx, identifier)
	if err != nil {
		logx.WithError(err).WithField("identifier", identifier).
			Error("login: failed to record failed attempt")
		return
	}
	if lockedNow {
		logx.WithFields(logx.Fields{
			"identifier": identifier,
			"ip":         ip,
			"failures":   count,
		}).Warn("login: account locked after repeated failures")
	}
}

// RetryDelay exposes the advisory delay layer for the HTTP handler, which
// sleeps before answering failed attempts.
func (s *Service) RetryDelay(ctx context.Context, identifier, ip string) time.Duration {
	delay, err := s.lockouts.RetryDelay(ctx, identifier, ip)
	if err != nil {
		// Advisory layer: fail open.
		logx.WithError(err).Warn("login: retry delay unavailable")
		return 0
	}
	return delay
}
