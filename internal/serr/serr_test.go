package serr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Is(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		target error
		expect bool
	}{
		{
			name:   "first cause",
			err:    New("delete user", ErrNotFound, ErrServer),
			target: ErrNotFound,
			expect: true,
		},
		{
			name:   "second cause",
			err:    New("delete user", ErrNotFound, ErrServer),
			target: ErrServer,
			expect: true,
		},
		{
			name:   "not a cause",
			err:    New("delete user", ErrNotFound),
			target: ErrPermissions,
			expect: false,
		},
		{
			name:   "wrapped by fmt",
			err:    fmt.Errorf("load: %w", New("", ErrTransport)),
			target: ErrTransport,
			expect: true,
		},
		{
			name:   "equal Error value",
			err:    New("x", ErrNotFound),
			target: New("x", ErrNotFound),
			expect: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, errors.Is(tc.err, tc.target))
		})
	}
}

func Test_Error_Error(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("get users: the requested entity could not be found", New("get users", ErrNotFound).Error())
	assert.Equal(ErrNotFound.Error(), New("", ErrNotFound).Error())
	assert.Equal("plain", New("plain").Error())
}

func Test_FromStatus(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		expect error
	}{
		{name: "401", status: http.StatusUnauthorized, expect: ErrUnauthorized},
		{name: "403", status: http.StatusForbidden, expect: ErrPermissions},
		{name: "404", status: http.StatusNotFound, expect: ErrNotFound},
		{name: "409", status: http.StatusConflict, expect: ErrAlreadyExists},
		{name: "422", status: http.StatusUnprocessableEntity, expect: ErrBadArgument},
		{name: "500", status: http.StatusInternalServerError, expect: ErrServer},
		{name: "502", status: http.StatusBadGateway, expect: ErrServer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			err := FromStatus(tc.status, "")
			assert.ErrorIs(err, tc.expect)
			assert.Contains(err.Error(), http.StatusText(tc.status))
		})
	}
}
