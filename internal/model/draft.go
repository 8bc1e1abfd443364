package model

import (
	"fmt"
	"net/mail"
	"strings"
)

// MinPasswordLength is the shortest password the add-user form accepts.
const MinPasswordLength = 6

// ValidationError is a single field that failed a form constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every constraint failure found in one form.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i := range ve {
		msgs[i] = ve[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Fields gives the names of the fields that failed, in order.
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, len(ve))
	for i := range ve {
		fields[i] = ve[i].Field
	}
	return fields
}

type validator struct {
	errors ValidationErrors
}

func (v *validator) required(field, value string) *validator {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, ValidationError{Field: field, Message: "is required"})
	}
	return v
}

func (v *validator) minLength(field, value string, min int) *validator {
	// required already reported it
	if value == "" {
		return v
	}
	if len([]rune(value)) < min {
		v.errors = append(v.errors, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters", min),
		})
	}
	return v
}

func (v *validator) email(field, value string) *validator {
	if strings.TrimSpace(value) == "" {
		return v
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.errors = append(v.errors, ValidationError{Field: field, Message: "must be a valid email address"})
	}
	return v
}

func (v *validator) role(field string, value Role) *validator {
	if _, err := ParseRole(value.String()); err != nil {
		v.errors = append(v.errors, ValidationError{Field: field, Message: err.Error()})
	}
	return v
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return v.errors
}

// NewUserDraft is the state of the add-user form.
type NewUserDraft struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// EmptyDraft returns the initial state of the add-user form.
func EmptyDraft() NewUserDraft {
	return NewUserDraft{Role: RoleUser}
}

// With returns a copy of d with the given field set to value.
func (d NewUserDraft) With(field UserField, value string) (NewUserDraft, error) {
	switch field {
	case FieldUsername:
		d.Username = value
	case FieldEmail:
		d.Email = value
	case FieldPassword:
		d.Password = value
	case FieldRole:
		role, err := ParseRole(value)
		if err != nil {
			return d, fmt.Errorf("role: %w", err)
		}
		d.Role = role
	default:
		return d, fmt.Errorf("unknown field %q", field)
	}
	return d, nil
}

// Validate checks the form constraints of the add-user form. The returned
// error, if non-nil, is a ValidationErrors listing every failing field.
func (d NewUserDraft) Validate() error {
	v := &validator{}
	v.required(string(FieldUsername), d.Username).
		required(string(FieldEmail), d.Email).
		email(string(FieldEmail), d.Email).
		required(string(FieldPassword), d.Password).
		minLength(string(FieldPassword), d.Password, MinPasswordLength).
		role(string(FieldRole), d.Role)
	return v.err()
}
