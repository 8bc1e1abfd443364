// Package views holds the state of each VidAdmin screen and the operations a
// user can perform on it. Controllers call the backend, keep the lists that
// are displayed, and report outcomes as notifications; rendering is left to
// the caller.
//
// Controllers are meant to be used from a single goroutine and are not safe
// for concurrent use.
package views

import (
	"github.com/dekarrin/vadm/internal/notify"
	"github.com/rs/zerolog"
)

// Texts looks up interface strings by key in the current language.
// *i18n.Live and i18n.Translator both satisfy it.
type Texts interface {
	T(key string, args ...interface{}) string
}

type keyTexts struct{}

func (keyTexts) T(key string, args ...interface{}) string {
	return key
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	// Notify receives a notification for the outcome of every operation. If
	// nil, notifications are dropped.
	Notify notify.Notifier

	// Confirm is asked before anything is deleted. If nil, every deletion is
	// declined.
	Confirm notify.Confirmer

	// Texts translates notification and prompt keys. If nil, keys are used
	// as-is.
	Texts Texts

	// Log receives details of failures that notifications leave out. If nil,
	// nothing is logged.
	Log *zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Notify == nil {
		d.Notify = notify.NotifierFunc(func(notify.Notification) {})
	}
	if d.Confirm == nil {
		d.Confirm = notify.Always(false)
	}
	if d.Texts == nil {
		d.Texts = keyTexts{}
	}
	if d.Log == nil {
		nop := zerolog.Nop()
		d.Log = &nop
	}
	return d
}

func (d Deps) success(key string, args ...interface{}) {
	d.Notify.Notify(notify.Notification{Level: notify.Success, Message: d.Texts.T(key, args...)})
}

// failure logs err and sends the single error notification for it.
func (d Deps) failure(err error, key string) {
	d.Log.Warn().Err(err).Str("notification", key).Msg("operation failed")
	d.Notify.Notify(notify.Notification{Level: notify.Error, Message: d.Texts.T(key)})
}

func (d Deps) confirm(key string) bool {
	return d.Confirm.Confirm(d.Texts.T(key))
}

func notifyInfo(msg string) notify.Notification {
	return notify.Notification{Level: notify.Info, Message: msg}
}
