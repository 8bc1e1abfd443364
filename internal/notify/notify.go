// Package notify carries user-facing notifications and confirmation prompts
// from the view controllers to whatever displays them.
package notify

import (
	"fmt"
	"sync"
)

// Level is the kind of a notification.
type Level int

const (
	Info Level = iota
	Success
	Error
)

func (lvl Level) String() string {
	switch lvl {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", int(lvl))
	}
}

// Notification is a short message shown to the user once.
type Notification struct {
	Level   Level
	Message string
}

func (n Notification) String() string {
	return n.Level.String() + ": " + n.Message
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to a Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Always is a Confirmer that gives the same answer to every question.
type Always bool

func (a Always) Confirm(string) bool {
	return bool(a)
}

// Recorder is a Notifier that keeps every notification it is given. It is safe
// for concurrent use.
type Recorder struct {
	mtx  sync.Mutex
	sent []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.sent = append(r.sent, n)
}

// All returns every notification received so far, oldest first.
func (r *Recorder) All() []Notification {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	all := make([]Notification, len(r.sent))
	copy(all, r.sent)
	return all
}

// Count returns how many notifications of the given level were received.
func (r *Recorder) Count(lvl Level) int {
	var n int
	for _, sent := range r.All() {
		if sent.Level == lvl {
			n++
		}
	}
	return n
}

// Reset forgets all received notifications.
func (r *Recorder) Reset() {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.sent = nil
}
