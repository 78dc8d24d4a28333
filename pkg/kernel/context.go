package kernel

// AuthContext es el contexto de autenticación que se inyecta en cada request
type AuthContext struct {
	UserID UserID `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// IsValid verifica si el AuthContext es válido
func (ac *AuthContext) IsValid() bool {
	return !ac.UserID.IsEmpty()
}

// IsAdmin verifica si el contexto tiene permisos de administrador
func (ac *AuthContext) IsAdmin() bool {
	return ac.Role == RoleAdmin
}

// HasAnyRole verifica si el contexto tiene alguno de los roles proporcionados
func (ac *AuthContext) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if ac.Role == r {
			return true
		}
	}
	return false
}

// ContextKey is the type used for fiber locals / context values.
type ContextKey string

const (
	// AuthContextKey es la clave para almacenar AuthContext en el request
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey es la clave para almacenar el ID de la petición
	RequestIDKey ContextKey = "request_id"
)
