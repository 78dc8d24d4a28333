package principalinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"golang.org/x/crypto/bcrypt"
)

// PostgresDirectory es la implementación en PostgreSQL del Directory.
type PostgresDirectory struct {
	db *sqlx.DB
}

// NewPostgresDirectory crea una nueva instancia del directorio.
func NewPostgresDirectory(db *sqlx.DB) principal.Directory {
	return &PostgresDirectory{db: db}
}

// FindByIdentifier busca un principal por email. Devuelve (nil, nil) cuando
// no existe, para que el llamador lo trate igual que una contraseña errónea.
func (d *PostgresDirectory) FindByIdentifier(ctx context.Context, identifier string) (*principal.Principal, error) {
	var p principal.Principal
	query := `
		SELECT id, email, name, role, is_active, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)`

	if err := d.db.GetContext(ctx, &p, query, identifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, principal.ErrLookupFailed(err).WithDetail("identifier", identifier)
	}
	return &p, nil
}

// FindByID busca un principal por su id.
func (d *PostgresDirectory) FindByID(ctx context.Context, id string) (*principal.Principal, error) {
	var p principal.Principal
	query := `
		SELECT id, email, name, role, is_active, password_hash, created_at
		FROM users
		WHERE id = $1`

	if err := d.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, principal.ErrLookupFailed(err).WithDetail("user_id", id)
	}
	return &p, nil
}

// VerifyPassword compara la contraseña contra el hash bcrypt almacenado.
func (d *PostgresDirectory) VerifyPassword(p *principal.Principal, password string) bool {
	if p == nil || p.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}
