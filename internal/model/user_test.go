package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseRole(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Role
		expectErr bool
	}{
		{name: "user", input: "user", expect: RoleUser},
		{name: "admin upper case", input: "ADMIN", expect: RoleAdmin},
		{name: "padded", input: "  admin ", expect: RoleAdmin},
		{name: "unknown", input: "root", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ParseRole(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_User_With(t *testing.T) {
	assert := assert.New(t)
	u := User{ID: "1", Username: "ann", Email: "a@x.com", Role: RoleUser}

	edited, err := u.With(FieldUsername, "anne")
	assert.NoError(err)
	assert.Equal("anne", edited.Username)
	assert.Equal("ann", u.Username, "original must not change")

	edited, err = u.With(FieldRole, "admin")
	assert.NoError(err)
	assert.Equal(RoleAdmin, edited.Role)

	_, err = u.With(FieldRole, "superuser")
	assert.Error(err)

	_, err = u.With(FieldPassword, "secret")
	assert.Error(err)
}

func Test_NewUserDraft_Validate(t *testing.T) {
	testCases := []struct {
		name         string
		draft        NewUserDraft
		expectFields []string
	}{
		{
			name:  "valid",
			draft: NewUserDraft{Username: "bob", Email: "bob@x.com", Password: "hunter2", Role: RoleUser},
		},
		{
			name:  "exactly minimum password",
			draft: NewUserDraft{Username: "bob", Email: "bob@x.com", Password: "123456", Role: RoleAdmin},
		},
		{
			name:         "short password",
			draft:        NewUserDraft{Username: "bob", Email: "bob@x.com", Password: "12345", Role: RoleUser},
			expectFields: []string{"password"},
		},
		{
			name:         "empty draft",
			draft:        EmptyDraft(),
			expectFields: []string{"username", "email", "password"},
		},
		{
			name:         "bad email and role",
			draft:        NewUserDraft{Username: "bob", Email: "not an email", Password: "hunter22", Role: Role("root")},
			expectFields: []string{"email", "role"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			err := tc.draft.Validate()
			if tc.expectFields == nil {
				assert.NoError(err)
				return
			}

			var verrs ValidationErrors
			if assert.True(errors.As(err, &verrs)) {
				assert.Equal(tc.expectFields, verrs.Fields())
			}
		})
	}
}

func Test_NewUserDraft_With(t *testing.T) {
	assert := assert.New(t)

	d := EmptyDraft()
	d, err := d.With(FieldPassword, strings.Repeat("x", 8))
	assert.NoError(err)
	assert.Equal("xxxxxxxx", d.Password)

	_, err = d.With(FieldRole, "nobody")
	assert.Error(err)
	assert.Equal(RoleUser, d.Role)
}
