package principal

import (
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// Principal is a user as seen by the credential directory. This core only
// reads principals; account management lives elsewhere.
type Principal struct {
	ID           kernel.UserID `db:"id" json:"id"`
	Email        string        `db:"email" json:"email"`
	Name         string        `db:"name" json:"name"`
	Role         kernel.Role   `db:"role" json:"role"`
	IsActive     bool          `db:"is_active" json:"is_active"`
	PasswordHash string        `db:"password_hash" json:"-"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// PublicView is the caller-facing shape of a principal, with credential
// material stripped.
type PublicView struct {
	ID    kernel.UserID `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  kernel.Role   `json:"role"`
}

// Public returns the caller-facing view.
func (p *Principal) Public() PublicView {
	return PublicView{
		ID:    p.ID,
		Email: p.Email,
		Name:  p.Name,
		Role:  p.Role,
	}
}
