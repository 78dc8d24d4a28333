package kernel

// UserID identifies a principal in the credential directory.
type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// Role is the coarse authorization role carried in token claims.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleReader    Role = "reader"
	RoleEditor    Role = "editor"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string { return string(r) }

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAnonymous, RoleReader, RoleEditor, RoleAdmin:
		return true
	}
	return false
}
