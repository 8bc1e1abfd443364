package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/vadm/internal/cmderr"
)

type helpEntry struct {
	usage string
	desc  string
}

// order in which commands are listed by HELP with no topic.
var helpOrder = []string{
	Login, Logout, History, Open, Refresh, Sidebar, Admin, Dashboard, Tab, Load,
	Show, Edit, Set, Save, Cancel, Add, Delete, Report, Lang, Help, Quit,
}

var helpEntries = map[string]helpEntry{
	Login:     {"LOGIN [USERNAME]", "Log in to the backend. The password is asked for."},
	Logout:    {"LOGOUT", "Log out and forget the saved token."},
	History:   {"HISTORY", "Reload the list of your processed videos in the sidebar."},
	Open:      {"OPEN ID", "Fetch a processed video and its report from your history."},
	Refresh:   {"REFRESH", "Exchange the current access token for a new one."},
	Sidebar:   {"SIDEBAR", "Show or hide the history sidebar."},
	Admin:     {"ADMIN", "Open the admin dashboard. Only admins may do this."},
	Dashboard: {"DASHBOARD", "Leave the admin dashboard and return to the history view."},
	Tab:       {"TAB USERS|VIDEOS", "Switch the admin dashboard to another tab and load it."},
	Load:      {"LOAD", "Load the current admin tab again."},
	Show:      {"SHOW", "Show the current view."},
	Edit:      {"EDIT ID", "Start editing the user with the given ID."},
	Set:       {"SET FIELD VALUE", "Set a field of the user being edited or added. Fields are username, email, role, and password (new users only)."},
	Save:      {"SAVE", "Save the user being edited, or submit the new user."},
	Cancel:    {"CANCEL", "Stop editing or adding a user without saving."},
	Add:       {"ADD", "Start adding a new user."},
	Delete:    {"DELETE ID", "Delete the user or video with the given ID, after asking."},
	Report:    {"REPORT ID", "Download the report of a completed video."},
	Lang:      {"LANG", "Switch the interface between English and Russian."},
	Help:      {"HELP [COMMAND]", "List the commands, or describe one of them."},
	Quit:      {"QUIT", "Leave the console."},
}

// HelpText returns the help for topic, which must be a canonical verb, or a
// list of every command if topic is empty.
func HelpText(topic string) (string, error) {
	if topic == "" {
		var sb strings.Builder
		sb.WriteString("Commands:\n")
		for _, verb := range helpOrder {
			sb.WriteString(fmt.Sprintf("  %-18s %s\n", helpEntries[verb].usage, firstSentence(helpEntries[verb].desc)))
		}
		sb.WriteString("Type HELP followed by a command for more about it.")
		return sb.String(), nil
	}

	entry, ok := helpEntries[strings.ToUpper(topic)]
	if !ok {
		return "", cmderr.Interpreterf("There is no command called %q", topic)
	}

	var aliases []string
	for alias, exp := range VerbAliases {
		if strings.Fields(exp)[0] == strings.ToUpper(topic) {
			aliases = append(aliases, alias)
		}
	}

	text := entry.usage + "\n" + entry.desc
	if len(aliases) > 0 {
		sort.Strings(aliases)
		text += "\nAlso: " + strings.Join(aliases, ", ")
	}
	return text, nil
}

func firstSentence(s string) string {
	if idx := strings.Index(s, ". "); idx >= 0 {
		return s[:idx+1]
	}
	return s
}
