package views

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/dekarrin/vadm/internal/apitest"
	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoUsers = []model.User{
	{ID: "1", Username: "ann", Email: "a@x.com", Role: model.RoleUser},
	{ID: "2", Username: "bob", Email: "b@x.com", Role: model.RoleAdmin},
}

func Test_UserTable_Load(t *testing.T) {
	testCases := []struct {
		name          string
		handler       http.HandlerFunc
		expectRows    int
		expectErr     bool
		expectFailMsg string
	}{
		{
			name:       "users are listed",
			handler:    apitest.JSON(http.StatusOK, twoUsers),
			expectRows: 2,
		},
		{
			name:       "empty list",
			handler:    apitest.JSON(http.StatusOK, []model.User{}),
			expectRows: 0,
		},
		{
			name:          "server error",
			handler:       apitest.Error(http.StatusInternalServerError, "boom"),
			expectErr:     true,
			expectFailMsg: "Failed to load users",
		},
		{
			name:          "forbidden",
			handler:       apitest.Error(http.StatusForbidden, "no"),
			expectErr:     true,
			expectFailMsg: "Failed to load users",
		},
		{
			name:          "not json",
			handler:       apitest.Raw(http.StatusOK, "text/html", []byte("<html>")),
			expectErr:     true,
			expectFailMsg: "Failed to load users",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, true)
			env.backend.On(http.MethodGet, "/users", tc.handler)

			ut := NewUserTable(env.client, env.deps)
			err := ut.Load(context.Background())

			assert.False(ut.Loading())
			assert.Len(ut.Rows(), tc.expectRows)
			if tc.expectErr {
				assert.Error(err)
				notes := env.notes.All()
				if assert.Len(notes, 1) {
					assert.Equal(notify.Error, notes[0].Level)
					assert.Equal(tc.expectFailMsg, notes[0].Message)
				}
			} else {
				assert.NoError(err)
				assert.Empty(env.notes.All())
			}
		})
	}
}

func Test_UserTable_Load_FailureEmptiesList(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	var calls int32
	env.backend.On(http.MethodGet, "/users", func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			apitest.JSON(http.StatusOK, twoUsers)(w, req)
			return
		}
		apitest.Error(http.StatusBadGateway, "gone")(w, req)
	})

	ut := NewUserTable(env.client, env.deps)
	require.NoError(t, ut.Load(context.Background()))
	assert.Len(ut.Rows(), 2)

	assert.Error(ut.Load(context.Background()))
	assert.Empty(ut.Rows())
	assert.Equal(1, env.notes.Count(notify.Error))
}

func Test_UserTable_EditAndSave(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	env.backend.On(http.MethodGet, "/users", apitest.JSON(http.StatusOK, twoUsers[:1]))
	env.backend.On(http.MethodPut, "/users/{id}", apitest.Echo(http.StatusOK, map[string]interface{}{"id": "1"}))

	ut := NewUserTable(env.client, env.deps)
	require.NoError(t, ut.Load(context.Background()))

	rows := ut.Rows()
	require.Len(t, rows, 1)
	assert.Equal(model.RoleUser, rows[0].Role)

	assert.NoError(ut.BeginEdit("1"))
	assert.NoError(ut.SetField(model.FieldUsername, "anne"))

	// the row itself is untouched until saved
	assert.Equal("ann", ut.Rows()[0].Username)

	assert.NoError(ut.Save(context.Background()))

	req, ok := env.backend.Last(http.MethodPut, "/users/1")
	if assert.True(ok) {
		assert.JSONEq(`{"username":"anne","email":"a@x.com","role":"user"}`, string(req.Body))
	}
	assert.Equal("anne", ut.Rows()[0].Username)
	assert.False(ut.IsEditing("1"))
	_, _, editing := ut.Editing()
	assert.False(editing)

	notes := env.notes.All()
	if assert.Len(notes, 1) {
		assert.Equal(notify.Notification{Level: notify.Success, Message: "User updated"}, notes[0])
	}
}

func Test_UserTable_SaveFailureKeepsEditMode(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	env.backend.On(http.MethodGet, "/users", apitest.JSON(http.StatusOK, twoUsers))
	env.backend.On(http.MethodPut, "/users/{id}", apitest.Error(http.StatusConflict, "taken"))

	ut := NewUserTable(env.client, env.deps)
	require.NoError(t, ut.Load(context.Background()))
	require.NoError(t, ut.BeginEdit("2"))
	require.NoError(t, ut.SetField(model.FieldEmail, "new@x.com"))

	assert.Error(ut.Save(context.Background()))

	id, draft, ok := ut.Editing()
	assert.True(ok)
	assert.Equal("2", id)
	assert.Equal("new@x.com", draft.Email)
	assert.Equal("b@x.com", ut.Rows()[1].Email)
	assert.Equal(1, env.notes.Count(notify.Error))
}

func Test_UserTable_SingleEditRow(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	env.backend.On(http.MethodGet, "/users", apitest.JSON(http.StatusOK, twoUsers))

	ut := NewUserTable(env.client, env.deps)
	require.NoError(t, ut.Load(context.Background()))

	assert.NoError(ut.BeginEdit("1"))
	assert.NoError(ut.SetField(model.FieldUsername, "changed"))
	assert.NoError(ut.BeginEdit("2"))

	assert.False(ut.IsEditing("1"))
	assert.True(ut.IsEditing("2"))
	_, draft, _ := ut.Editing()
	assert.Equal("bob", draft.Username)
	assert.Equal("ann", ut.Rows()[0].Username)

	// unknown ids change nothing
	assert.Error(ut.BeginEdit("404"))
	assert.True(ut.IsEditing("2"))

	ut.CancelEdit()
	assert.False(ut.IsEditing("2"))
	assert.Equal(twoUsers, ut.Rows())
}

func Test_UserTable_SetField(t *testing.T) {
	testCases := []struct {
		name      string
		editing   bool
		field     model.UserField
		value     string
		expectErr bool
	}{
		{name: "username", editing: true, field: model.FieldUsername, value: "x"},
		{name: "role", editing: true, field: model.FieldRole, value: "ADMIN"},
		{name: "bad role", editing: true, field: model.FieldRole, value: "root", expectErr: true},
		{name: "password cannot be edited", editing: true, field: model.FieldPassword, value: "secret1", expectErr: true},
		{name: "not editing", editing: false, field: model.FieldUsername, value: "x", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, true)
			env.backend.On(http.MethodGet, "/users", apitest.JSON(http.StatusOK, twoUsers))
			ut := NewUserTable(env.client, env.deps)
			require.NoError(t, ut.Load(context.Background()))
			if tc.editing {
				require.NoError(t, ut.BeginEdit("1"))
			}

			err := ut.SetField(tc.field, tc.value)
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_UserTable_Remove(t *testing.T) {
	testCases := []struct {
		name          string
		confirm       bool
		handler       http.HandlerFunc
		expectRemoved bool
		expectErr     bool
		expectDeletes int
		expectNote    *notify.Notification
	}{
		{
			name:          "confirmed",
			confirm:       true,
			handler:       apitest.NoContent(),
			expectRemoved: true,
			expectDeletes: 1,
			expectNote:    &notify.Notification{Level: notify.Success, Message: "User deleted"},
		},
		{
			name:          "declined",
			confirm:       false,
			handler:       apitest.NoContent(),
			expectDeletes: 0,
		},
		{
			name:          "backend refuses",
			confirm:       true,
			handler:       apitest.Error(http.StatusForbidden, "no"),
			expectErr:     true,
			expectDeletes: 1,
			expectNote:    &notify.Notification{Level: notify.Error, Message: "Failed to delete user"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, tc.confirm)
			env.backend.On(http.MethodGet, "/users", apitest.JSON(http.StatusOK, twoUsers))
			env.backend.On(http.MethodDelete, "/users/{id}", tc.handler)

			ut := NewUserTable(env.client, env.deps)
			require.NoError(t, ut.Load(context.Background()))

			removed, err := ut.Remove(context.Background(), "1")
			assert.Equal(tc.expectRemoved, removed)
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(tc.expectDeletes, env.backend.Count(http.MethodDelete, "/users/1"))

			if tc.expectRemoved {
				assert.Equal(twoUsers[1:], ut.Rows())
			} else {
				assert.Equal(twoUsers, ut.Rows())
			}

			notes := env.notes.All()
			if tc.expectNote == nil {
				assert.Empty(notes)
			} else if assert.Len(notes, 1) {
				assert.Equal(*tc.expectNote, notes[0])
			}
		})
	}
}

func Test_UserTable_SubmitAdd(t *testing.T) {
	testCases := []struct {
		name          string
		fields        map[model.UserField]string
		handler       http.HandlerFunc
		expectInvalid []string
		expectErr     bool
		expectAdded   bool
	}{
		{
			name: "valid draft",
			fields: map[model.UserField]string{
				model.FieldUsername: "cat",
				model.FieldEmail:    "c@x.com",
				model.FieldPassword: "secret1",
			},
			handler: apitest.JSON(http.StatusCreated, map[string]interface{}{
				"user": map[string]string{"id": "3", "username": "cat", "email": "c@x.com", "role": "user"},
			}),
			expectAdded: true,
		},
		{
			name: "short password never reaches backend",
			fields: map[model.UserField]string{
				model.FieldUsername: "cat",
				model.FieldEmail:    "c@x.com",
				model.FieldPassword: "12345",
			},
			expectInvalid: []string{"password"},
		},
		{
			name: "bad email and missing username",
			fields: map[model.UserField]string{
				model.FieldEmail:    "not-an-email",
				model.FieldPassword: "secret1",
			},
			expectInvalid: []string{"username", "email"},
		},
		{
			name: "backend refuses",
			fields: map[model.UserField]string{
				model.FieldUsername: "ann",
				model.FieldEmail:    "a2@x.com",
				model.FieldPassword: "secret1",
			},
			handler:   apitest.Error(http.StatusConflict, "exists"),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, true)
			env.backend.On(http.MethodGet, "/users", apitest.JSON(http.StatusOK, twoUsers))
			if tc.handler != nil {
				env.backend.On(http.MethodPost, "/auth/register", tc.handler)
			}

			ut := NewUserTable(env.client, env.deps)
			require.NoError(t, ut.Load(context.Background()))

			ut.OpenAddForm()
			for f, v := range tc.fields {
				require.NoError(t, ut.SetDraftField(f, v))
			}
			draftBefore := ut.Draft()

			err := ut.SubmitAdd(context.Background())

			if tc.expectInvalid != nil {
				var verrs model.ValidationErrors
				if assert.True(errors.As(err, &verrs)) {
					assert.ElementsMatch(tc.expectInvalid, verrs.Fields())
				}
				assert.Equal(0, env.backend.Count(http.MethodPost, "/auth/register"))
				assert.True(ut.AddFormOpen())
				assert.Equal(draftBefore, ut.Draft())
				assert.Empty(env.notes.All())
				return
			}

			assert.Equal(1, env.backend.Count(http.MethodPost, "/auth/register"))
			if tc.expectErr {
				assert.Error(err)
				assert.True(ut.AddFormOpen())
				assert.Equal(draftBefore, ut.Draft())
				assert.Equal(1, env.notes.Count(notify.Error))
				assert.Len(ut.Rows(), 2)
				return
			}

			assert.NoError(err)
			assert.False(ut.AddFormOpen())
			assert.Equal(model.EmptyDraft(), ut.Draft())
			rows := ut.Rows()
			if assert.Len(rows, 3) {
				assert.Equal("cat", rows[2].Username)
			}
			assert.Equal(1, env.notes.Count(notify.Success))
		})
	}
}

func Test_UserTable_CancelAddResetsDraft(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	ut := NewUserTable(env.client, env.deps)

	assert.Error(ut.SetDraftField(model.FieldUsername, "x"), "form is closed")

	ut.OpenAddForm()
	assert.NoError(ut.SetDraftField(model.FieldUsername, "x"))
	assert.NoError(ut.SetDraftField(model.FieldRole, "admin"))
	ut.CancelAdd()

	assert.False(ut.AddFormOpen())
	assert.Equal(model.EmptyDraft(), ut.Draft())
}
