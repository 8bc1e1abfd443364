// Package model contains the entities that VidAdmin displays and edits, along
// with the decoding rules that turn loosely-typed API payloads into them.
package model

import (
	"fmt"
	"strings"
)

// Role is the privilege level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// IsAdmin returns whether the role grants elevated privilege.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole parses a role name. It is case-insensitive.
func ParseRole(s string) (Role, error) {
	check := strings.ToLower(strings.TrimSpace(s))
	switch check {
	case RoleUser.String():
		return RoleUser, nil
	case RoleAdmin.String():
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("must be one of 'user' or 'admin'")
	}
}

// User is a user account as returned by the backend.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// UserField is the name of an editable field of a User.
type UserField string

const (
	FieldUsername UserField = "username"
	FieldEmail    UserField = "email"
	FieldPassword UserField = "password"
	FieldRole     UserField = "role"
)

// ParseUserField parses the name of a user field. Password is only valid for
// new-user drafts; callers editing existing users must reject it themselves.
func ParseUserField(s string) (UserField, error) {
	switch UserField(strings.ToLower(strings.TrimSpace(s))) {
	case FieldUsername:
		return FieldUsername, nil
	case FieldEmail:
		return FieldEmail, nil
	case FieldPassword:
		return FieldPassword, nil
	case FieldRole:
		return FieldRole, nil
	default:
		return "", fmt.Errorf("%q is not one of username, email, password, or role", s)
	}
}

// With returns a copy of u with the given field set to value. Setting the
// role to something that is not a valid role is an error, as is attempting
// to set the password, which is not part of a User.
func (u User) With(field UserField, value string) (User, error) {
	switch field {
	case FieldUsername:
		u.Username = value
	case FieldEmail:
		u.Email = value
	case FieldRole:
		role, err := ParseRole(value)
		if err != nil {
			return u, fmt.Errorf("role: %w", err)
		}
		u.Role = role
	default:
		return u, fmt.Errorf("%s cannot be edited on an existing user", field)
	}
	return u, nil
}

// UserUpdate is the body sent to update an existing user.
type UserUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// UpdateOf gives the update request that would make the server's copy of the
// user match u.
func UpdateOf(u User) UserUpdate {
	return UserUpdate{
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
