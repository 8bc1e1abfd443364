package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/dekarrin/vadm/internal/blob"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/prefs"
	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dekarrin/vadm/internal/session"
)

// Tab is a tab of the admin shell.
type Tab string

const (
	TabUsers  Tab = "users"
	TabVideos Tab = "videos"
)

func (t Tab) String() string {
	return string(t)
}

// Label gives the translation key of the tab's title.
func (t Tab) Label() string {
	return string(t) + "_tab"
}

// ParseTab parses the name of a tab. It is case-insensitive.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabUsers:
		return TabUsers, nil
	case TabVideos:
		return TabVideos, nil
	default:
		return "", fmt.Errorf("%q is not one of 'users' or 'videos'", s)
	}
}

// AdminAPI is the part of the backend the admin shell needs.
type AdminAPI interface {
	UserAPI
	VideoAPI
}

// AdminShell is the tabbed admin screen. Exactly one tab is mounted at a
// time, and switching tabs replaces the mounted controller with a fresh one.
type AdminShell struct {
	api   AdminAPI
	saver blob.Saver
	store prefs.Store
	lang  *i18n.Live
	deps  Deps

	active Tab
	users  *UserTable
	videos *VideoTable
}

// NewAdminShell opens the admin shell for the user of sess and mounts the
// users tab, loading it. Users who are not admins are refused with an error
// matching serr.ErrNotAdmin and nothing is mounted.
//
// The shell translates through lang, which ToggleLanguage switches; it is used
// as the Texts of every controller the shell mounts, so d.Texts is ignored.
func NewAdminShell(ctx context.Context, sess session.Session, api AdminAPI, saver blob.Saver, store prefs.Store, lang *i18n.Live, d Deps) (*AdminShell, error) {
	if !sess.IsAdmin() {
		return nil, serr.New(fmt.Sprintf("user %q has role %q", sess.Username, sess.Role), serr.ErrNotAdmin)
	}

	d.Texts = lang
	shell := &AdminShell{
		api:   api,
		saver: saver,
		store: store,
		lang:  lang,
		deps:  d.withDefaults(),
	}

	// a failed load has already been notified and leaves an empty table
	_ = shell.mount(ctx, TabUsers)
	return shell, nil
}

func (as *AdminShell) mount(ctx context.Context, tab Tab) error {
	as.users = nil
	as.videos = nil
	as.active = tab

	switch tab {
	case TabVideos:
		as.videos = NewVideoTable(as.api, as.saver, as.deps)
		return as.videos.Load(ctx)
	default:
		as.users = NewUserTable(as.api, as.deps)
		return as.users.Load(ctx)
	}
}

// Active returns the mounted tab.
func (as *AdminShell) Active() Tab {
	return as.active
}

// Users returns the user table, or nil if the users tab is not mounted.
func (as *AdminShell) Users() *UserTable {
	return as.users
}

// Videos returns the video table, or nil if the videos tab is not mounted.
func (as *AdminShell) Videos() *VideoTable {
	return as.videos
}

// SwitchTab unmounts the active tab and mounts and loads tab. Switching to the
// active tab does nothing. The returned error is that of the load, which has
// already been notified.
func (as *AdminShell) SwitchTab(ctx context.Context, tab Tab) error {
	if tab == as.active {
		return nil
	}
	if tab != TabUsers && tab != TabVideos {
		return serr.New(fmt.Sprintf("unknown tab %q", tab), serr.ErrBadArgument)
	}
	return as.mount(ctx, tab)
}

// Reload loads the active tab again.
func (as *AdminShell) Reload(ctx context.Context) error {
	if as.videos != nil {
		return as.videos.Load(ctx)
	}
	return as.users.Load(ctx)
}

// Locale returns the current interface language.
func (as *AdminShell) Locale() i18n.Locale {
	return as.lang.Locale()
}

// ToggleLanguage switches between English and Russian and persists the
// choice. The switch takes effect even if persisting it fails.
func (as *AdminShell) ToggleLanguage() error {
	return ToggleLanguage(as.lang, as.store, as.deps)
}

// ToggleLanguage switches lang between English and Russian, persists the
// choice in store under prefs.LocaleKey, and notifies the switch in the new
// language.
func ToggleLanguage(lang *i18n.Live, store prefs.Store, d Deps) error {
	d = d.withDefaults()

	next := lang.Locale().Toggle()
	lang.Set(next)

	if err := store.Set(prefs.LocaleKey, next.String()); err != nil {
		d.Log.Warn().Err(err).Msg("could not persist language")
		return fmt.Errorf("persist language: %w", err)
	}

	d.Notify.Notify(notifyInfo(lang.T(i18n.LanguageSwitched)))
	return nil
}
