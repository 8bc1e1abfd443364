package vadm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/vadm/internal/cmderr"
	"github.com/dekarrin/vadm/internal/command"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/prefs"
	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dekarrin/vadm/internal/session"
	"github.com/dekarrin/vadm/internal/views"
)

// execute carries out cmd. Failures of backend calls have already been shown
// as notifications by the time it returns, so only errors with something new
// to tell the user are returned.
func (eng *Engine) execute(ctx context.Context, cmd command.Command) error {
	switch cmd.Verb {
	case command.Help:
		text, err := command.HelpText(cmd.Target)
		if err != nil {
			return err
		}
		return eng.write(text + "\n")
	case command.Login:
		return eng.login(ctx, cmd.Target)
	case command.Logout:
		return eng.logout(ctx)
	case command.Lang:
		return eng.toggleLanguage()
	case command.Show:
		return eng.show()
	case command.History, command.Open, command.Refresh, command.Sidebar:
		return eng.executeHistory(ctx, cmd)
	default:
		return eng.executeAdmin(ctx, cmd)
	}
}

func (eng *Engine) requireLogin() error {
	if eng.sess == nil {
		return cmderr.Interpreterf("You need to LOGIN first")
	}
	return nil
}

func (eng *Engine) logout(ctx context.Context) error {
	if err := eng.requireLogin(); err != nil {
		return cmderr.Interpreterf("You are not logged in")
	}

	// the token is forgotten here whether or not the server hears about it
	if err := eng.api.Logout(ctx); err != nil {
		eng.log.Warn().Err(err).Msg("server logout failed")
	}
	if err := eng.store.Delete(prefs.TokenKey); err != nil {
		eng.log.Warn().Err(err).Msg("could not remove saved token")
	}

	name := eng.sess.Username
	eng.leaveSession()
	return eng.writeLine(fmt.Sprintf("Logged out %s", name))
}

func (eng *Engine) toggleLanguage() error {
	var err error
	if eng.shell != nil {
		err = eng.shell.ToggleLanguage()
	} else {
		err = views.ToggleLanguage(eng.lang, eng.store, eng.deps)
	}
	if err != nil {
		return cmderr.WrapInterpreter(err, "The language was switched but could not be saved for next time", "")
	}
	return nil
}

func (eng *Engine) executeHistory(ctx context.Context, cmd command.Command) error {
	if err := eng.requireLogin(); err != nil {
		return err
	}
	if eng.shell != nil {
		return cmderr.Interpreterf("Your history is not shown on the admin dashboard; type DASHBOARD to go back to it first")
	}

	switch cmd.Verb {
	case command.History:
		return eng.enterHistory(ctx)
	case command.Sidebar:
		eng.sidebar.Toggle()
		return eng.show()
	case command.Refresh:
		if err := eng.sidebar.RefreshAuth(ctx); err != nil {
			return nil
		}
		sess, err := session.FromToken(eng.api.Token())
		if err != nil {
			eng.log.Warn().Err(err).Msg("refreshed token could not be read")
			return nil
		}
		eng.sess = &sess
		return eng.show()
	case command.Open:
		var title string
		var found bool
		for _, v := range eng.sidebar.Videos() {
			if v.ID == cmd.Target {
				title = v.Title
				found = true
				break
			}
		}
		if !found {
			return cmderr.Interpreterf("There is no video with ID %q in your history", cmd.Target)
		}
		if err := eng.sidebar.SelectVideo(ctx, cmd.Target, title); err != nil {
			return nil
		}
		return eng.show()
	default:
		return fmt.Errorf("not a history command: %s", cmd.Verb)
	}
}

func (eng *Engine) executeAdmin(ctx context.Context, cmd command.Command) error {
	if err := eng.requireLogin(); err != nil {
		return err
	}

	if cmd.Verb == command.Admin {
		if eng.shell != nil {
			return eng.show()
		}
		shell, err := views.NewAdminShell(ctx, *eng.sess, eng.api, eng.saver, eng.store, eng.lang, eng.deps)
		if err != nil {
			if errors.Is(err, serr.ErrNotAdmin) {
				return cmderr.WrapInterpreter(err, "Only admins can open the admin dashboard", "")
			}
			return err
		}
		eng.shell = shell
		return eng.show()
	}

	if cmd.Verb == command.Load && eng.shell == nil {
		return eng.enterHistory(ctx)
	}

	if eng.shell == nil {
		return cmderr.Interpreterf("You can only %s on the admin dashboard; type ADMIN to open it", cmd.Verb)
	}

	switch cmd.Verb {
	case command.Dashboard:
		return eng.enterHistory(ctx)
	case command.Tab:
		tab, err := views.ParseTab(cmd.Target)
		if err != nil {
			return cmderr.WrapInterpreter(err, fmt.Sprintf("There is no %q tab; try USERS or VIDEOS", cmd.Target), "")
		}
		// a failed load has been notified and leaves an empty table
		_ = eng.shell.SwitchTab(ctx, tab)
		return eng.show()
	case command.Load:
		_ = eng.shell.Reload(ctx)
		return eng.show()
	case command.Delete:
		return eng.deleteRow(ctx, cmd.Target)
	case command.Report:
		return eng.downloadReport(ctx, cmd.Target)
	default:
		return eng.executeUsers(ctx, cmd)
	}
}

func (eng *Engine) deleteRow(ctx context.Context, id string) error {
	var deleted bool
	var err error
	kind := "user"

	if vt := eng.shell.Videos(); vt != nil {
		kind = "video"
		deleted, err = vt.Remove(ctx, id)
	} else {
		deleted, err = eng.shell.Users().Remove(ctx, id)
	}

	if err != nil {
		if errors.Is(err, serr.ErrNotFound) && !deleted {
			// the backend failing with not found has already been notified
			if eng.rowMissing(id) {
				return cmderr.WrapInterpreter(err, fmt.Sprintf("There is no %s with ID %q", kind, id), "")
			}
		}
		return nil
	}
	if !deleted {
		return eng.writeLine("Nothing was deleted")
	}
	return eng.show()
}

func (eng *Engine) rowMissing(id string) bool {
	if vt := eng.shell.Videos(); vt != nil {
		_, ok := vt.Find(id)
		return !ok
	}
	for _, u := range eng.shell.Users().Rows() {
		if u.ID == id {
			return false
		}
	}
	return true
}

func (eng *Engine) downloadReport(ctx context.Context, id string) error {
	vt := eng.shell.Videos()
	if vt == nil {
		return cmderr.Interpreterf("Reports are on the videos tab; type TAB VIDEOS first")
	}

	_, err := vt.DownloadReport(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrNotReady):
			return cmderr.WrapInterpreter(err, eng.lang.T(i18n.ProcessingNotDone), "")
		case errors.Is(err, serr.ErrNotFound) && eng.rowMissing(id):
			return cmderr.WrapInterpreter(err, fmt.Sprintf("There is no video with ID %q", id), "")
		}
	}
	return nil
}

func (eng *Engine) executeUsers(ctx context.Context, cmd command.Command) error {
	ut := eng.shell.Users()
	if ut == nil {
		return cmderr.Interpreterf("You can only %s users; type TAB USERS first", strings.ToLower(cmd.Verb))
	}

	switch cmd.Verb {
	case command.Edit:
		if ut.AddFormOpen() {
			return cmderr.Interpreterf("Finish adding the new user with SAVE or CANCEL first")
		}
		if err := ut.BeginEdit(cmd.Target); err != nil {
			return cmderr.WrapInterpreter(err, fmt.Sprintf("There is no user with ID %q", cmd.Target), "")
		}
		return eng.show()
	case command.Add:
		ut.CancelEdit()
		ut.OpenAddForm()
		if err := eng.writeLine("Use SET to fill in username, email, password, and role, then SAVE."); err != nil {
			return err
		}
		return eng.show()
	case command.Set:
		return eng.setField(ut, cmd.Target, cmd.Value)
	case command.Save:
		return eng.saveUser(ctx, ut)
	case command.Cancel:
		switch {
		case ut.AddFormOpen():
			ut.CancelAdd()
		case eng.isEditing(ut):
			ut.CancelEdit()
		default:
			return cmderr.Interpreterf("There is nothing to cancel")
		}
		return eng.show()
	default:
		return cmderr.Interpreterf("I don't know how to %s here", strings.ToLower(cmd.Verb))
	}
}

func (eng *Engine) isEditing(ut *views.UserTable) bool {
	_, _, ok := ut.Editing()
	return ok
}

func (eng *Engine) setField(ut *views.UserTable, name, value string) error {
	field, err := model.ParseUserField(name)
	if err != nil {
		return cmderr.WrapInterpreter(err, fmt.Sprintf("There is no %q field; use username, email, password, or role", name), "")
	}

	switch {
	case ut.AddFormOpen():
		err = ut.SetDraftField(field, value)
	case eng.isEditing(ut):
		if field == model.FieldPassword {
			return cmderr.Interpreterf("Passwords can only be set when adding a user")
		}
		err = ut.SetField(field, value)
	default:
		return cmderr.Interpreterf("Use EDIT or ADD before setting fields")
	}

	if err != nil {
		if field == model.FieldRole {
			return cmderr.WrapInterpreter(err, "The role must be user or admin", "")
		}
		return cmderr.WrapInterpreter(err, fmt.Sprintf("Can't set %s: %v", field, err), "")
	}
	return eng.show()
}

func (eng *Engine) saveUser(ctx context.Context, ut *views.UserTable) error {
	switch {
	case ut.AddFormOpen():
		err := ut.SubmitAdd(ctx)
		var invalid model.ValidationErrors
		if errors.As(err, &invalid) {
			msgs := make([]string, len(invalid))
			for i := range invalid {
				msgs[i] = eng.lang.T(invalid[i].Field) + " " + invalid[i].Message
			}
			return cmderr.WrapInterpreter(err, "The new user was not added:\n"+strings.Join(msgs, "\n"), "")
		}
		if err != nil {
			return nil
		}
	case eng.isEditing(ut):
		if err := ut.Save(ctx); err != nil {
			return nil
		}
	default:
		return cmderr.Interpreterf("There is nothing to save; use EDIT or ADD first")
	}
	return eng.show()
}
