package session

import (
	"encoding/json"
	"slices"
	"strings"

	"orchard/cmd/internal/auth/client"
)

// User is the authenticated identity as held client-side.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities,omitempty"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// HasAuthority reports whether the user carries the given fine-grained authority.
func (u *User) HasAuthority(authority string) bool {
	return u != nil && slices.Contains(u.Authorities, authority)
}

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func userFromPayload(p client.UserPayload) User {
	return User{
		ID:          p.ID,
		Email:       NormalizeEmail(p.Email),
		FullName:    p.FullName,
		Roles:       p.Roles,
		Authorities: p.Authorities,
	}
}

func encodeUser(u User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeUser(s string) (User, error) {
	var u User
	if err := json.Unmarshal([]byte(s), &u); err != nil {
		return User{}, err
	}
	return u, nil
}
