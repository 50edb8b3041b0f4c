package schema

import "fmt"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a stored role value. Only the two known roles are
// permitted; anything else is rejected at the data-model boundary.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

type User struct {
	ChatID int64
	UserID int64
	Name   string
	Role   Role
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
