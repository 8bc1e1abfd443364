package views

import (
	"context"
	"fmt"

	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/serr"
)

// UserAPI is the part of the backend the user table needs.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (model.User, error)
	DeleteUser(ctx context.Context, id string) error
	Register(ctx context.Context, draft model.NewUserDraft) (model.User, error)
}

// UserTable is the user list of the admin shell. At most one row is in edit
// mode at a time; edits go to a draft copy of the row until saved.
type UserTable struct {
	api  UserAPI
	deps Deps

	users   []model.User
	loading bool

	editingID string
	editDraft model.User

	adding   bool
	newDraft model.NewUserDraft
}

// NewUserTable creates an empty UserTable. Call Load to fill it.
func NewUserTable(api UserAPI, d Deps) *UserTable {
	return &UserTable{
		api:      api,
		deps:     d.withDefaults(),
		newDraft: model.EmptyDraft(),
	}
}

// Load replaces the list with the users on the backend and leaves edit mode.
// If the fetch fails the list is emptied and a single failure notification is
// sent.
func (ut *UserTable) Load(ctx context.Context) error {
	ut.loading = true
	defer func() { ut.loading = false }()

	users, err := ut.api.ListUsers(ctx)
	ut.editingID = ""
	ut.editDraft = model.User{}
	if err != nil {
		ut.users = nil
		ut.deps.failure(err, i18n.UsersFetchFailed)
		return err
	}

	ut.users = users
	return nil
}

// Loading returns whether a Load is in progress.
func (ut *UserTable) Loading() bool {
	return ut.loading
}

// Rows returns the users as currently displayed.
func (ut *UserTable) Rows() []model.User {
	rows := make([]model.User, len(ut.users))
	copy(rows, ut.users)
	return rows
}

func (ut *UserTable) indexOf(id string) int {
	for i := range ut.users {
		if ut.users[i].ID == id {
			return i
		}
	}
	return -1
}

// Editing returns the ID of the row in edit mode and its draft. ok is false if
// no row is being edited.
func (ut *UserTable) Editing() (id string, draft model.User, ok bool) {
	if ut.editingID == "" {
		return "", model.User{}, false
	}
	return ut.editingID, ut.editDraft, true
}

// IsEditing returns whether the row with the given ID is in edit mode.
func (ut *UserTable) IsEditing(id string) bool {
	return ut.editingID != "" && ut.editingID == id
}

// BeginEdit puts the row with the given ID in edit mode, taking any other row
// out of it. Unsaved changes to the other row are discarded.
func (ut *UserTable) BeginEdit(id string) error {
	idx := ut.indexOf(id)
	if idx < 0 {
		return serr.New(fmt.Sprintf("no user with ID %q", id), serr.ErrNotFound)
	}

	ut.editingID = id
	ut.editDraft = ut.users[idx]
	return nil
}

// SetField changes one field of the draft of the row in edit mode. Only
// username, email and role can be edited.
func (ut *UserTable) SetField(field model.UserField, value string) error {
	if ut.editingID == "" {
		return serr.New("no user is being edited", serr.ErrBadArgument)
	}

	updated, err := ut.editDraft.With(field, value)
	if err != nil {
		return serr.New("", err, serr.ErrBadArgument)
	}
	ut.editDraft = updated
	return nil
}

// CancelEdit leaves edit mode and discards the draft.
func (ut *UserTable) CancelEdit() {
	ut.editingID = ""
	ut.editDraft = model.User{}
}

// Save sends the draft of the row in edit mode to the backend. On success the
// row is replaced with the user the backend returned and edit mode ends. On
// failure the row stays in edit mode with the draft intact.
func (ut *UserTable) Save(ctx context.Context) error {
	if ut.editingID == "" {
		return serr.New("no user is being edited", serr.ErrBadArgument)
	}

	saved, err := ut.api.UpdateUser(ctx, ut.editingID, model.UpdateOf(ut.editDraft))
	if err != nil {
		ut.deps.failure(err, i18n.UserUpdateFailed)
		return err
	}

	if saved.ID == "" {
		saved.ID = ut.editingID
	}
	if idx := ut.indexOf(ut.editingID); idx >= 0 {
		ut.users[idx] = saved
	}
	ut.CancelEdit()
	ut.deps.success(i18n.UserUpdated)
	return nil
}

// Remove deletes the user with the given ID after confirmation. If the user
// declines, nothing is sent and false is returned.
func (ut *UserTable) Remove(ctx context.Context, id string) (bool, error) {
	if ut.indexOf(id) < 0 {
		return false, serr.New(fmt.Sprintf("no user with ID %q", id), serr.ErrNotFound)
	}
	if !ut.deps.confirm(i18n.ConfirmDeleteUser) {
		return false, nil
	}

	if err := ut.api.DeleteUser(ctx, id); err != nil {
		ut.deps.failure(err, i18n.UserDeleteFailed)
		return false, err
	}

	// the list may have changed while waiting
	if idx := ut.indexOf(id); idx >= 0 {
		ut.users = append(ut.users[:idx], ut.users[idx+1:]...)
	}
	if ut.editingID == id {
		ut.CancelEdit()
	}
	ut.deps.success(i18n.UserDeleted)
	return true, nil
}

// OpenAddForm shows the add-user form.
func (ut *UserTable) OpenAddForm() {
	ut.adding = true
}

// AddFormOpen returns whether the add-user form is shown.
func (ut *UserTable) AddFormOpen() bool {
	return ut.adding
}

// Draft returns the current values of the add-user form.
func (ut *UserTable) Draft() model.NewUserDraft {
	return ut.newDraft
}

// SetDraftField changes one field of the add-user form.
func (ut *UserTable) SetDraftField(field model.UserField, value string) error {
	if !ut.adding {
		return serr.New("the add user form is not open", serr.ErrBadArgument)
	}

	updated, err := ut.newDraft.With(field, value)
	if err != nil {
		return serr.New("", err, serr.ErrBadArgument)
	}
	ut.newDraft = updated
	return nil
}

// CancelAdd closes the add-user form and resets it.
func (ut *UserTable) CancelAdd() {
	ut.adding = false
	ut.newDraft = model.EmptyDraft()
}

// SubmitAdd registers the user described by the add-user form. A draft that
// fails the form constraints is never sent; the returned error is then a
// model.ValidationErrors. On success the new user is appended to the list and
// the form is closed and reset. On backend failure the form stays open with
// its values.
func (ut *UserTable) SubmitAdd(ctx context.Context) error {
	if !ut.adding {
		return serr.New("the add user form is not open", serr.ErrBadArgument)
	}
	if err := ut.newDraft.Validate(); err != nil {
		return err
	}

	created, err := ut.api.Register(ctx, ut.newDraft)
	if err != nil {
		ut.deps.failure(err, i18n.UserAddFailed)
		return err
	}

	ut.users = append(ut.users, created)
	ut.CancelAdd()
	ut.deps.success(i18n.UserAdded)
	return nil
}
