package principal

import "context"

// Directory is the read-only credential directory this core authenticates
// against. FindByIdentifier returns (nil, nil) for unknown identifiers so
// callers can treat absence identically to a wrong password.
type Directory interface {
	FindByIdentifier(ctx context.Context, identifier string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
	VerifyPassword(p *Principal, password string) bool
}
