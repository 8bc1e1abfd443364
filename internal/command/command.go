// Package command defines console command data types and handles parsing of
// commands from input sources.
package command

// Canonical verbs. Aliases are expanded to one of these before parsing, so a
// Command never carries any other verb.
const (
	Login     = "LOGIN"
	Logout    = "LOGOUT"
	Admin     = "ADMIN"
	Dashboard = "DASHBOARD"
	Tab       = "TAB"
	Load      = "LOAD"
	Show      = "SHOW"
	Edit      = "EDIT"
	Set       = "SET"
	Save      = "SAVE"
	Cancel    = "CANCEL"
	Delete    = "DELETE"
	Add       = "ADD"
	Report    = "REPORT"
	History   = "HISTORY"
	Open      = "OPEN"
	Refresh   = "REFRESH"
	Sidebar   = "SIDEBAR"
	Lang      = "LANG"
	Help      = "HELP"
	Quit      = "QUIT"
)

// Command is a valid command received from a console input source.
type Command struct {

	// Verb is the canonical name of the command being invoked, such as "EDIT",
	// "SAVE", or "QUIT". Some verbs have shorthand forms which are typed
	// differently, for instance "RM" could be typed instead of "DELETE", or
	// "USERS" instead of "TAB USERS", and for all those cases they result in a
	// Command with the canonical verb.
	Verb string

	// Target is what the command acts on: the id in "EDIT 3" or "DELETE 3",
	// the tab in "TAB videos", the field in "SET email a@x.com", the username
	// in "LOGIN ann", or the verb asked about in "HELP SET". Its case is kept
	// as typed except for tab and field names, which are lower case, and HELP
	// topics, which are upper case.
	Target string

	// Value is the new value given to SET, exactly as typed apart from
	// surrounding whitespace.
	Value string
}
