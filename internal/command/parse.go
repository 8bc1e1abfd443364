package command

import (
	"strings"
	"unicode"

	"github.com/dekarrin/vadm/internal/cmderr"
)

var (
	// VerbAliases maps shorthand verbs (which must be the first words in a
	// command) to their canonical forms. They are all uppercase.
	VerbAliases map[string]string = map[string]string{
		"LOG IN":   "LOGIN",
		"SIGNIN":   "LOGIN",
		"LOG OUT":  "LOGOUT",
		"SIGNOUT":  "LOGOUT",
		"BACK":     "DASHBOARD",
		"GO BACK":  "DASHBOARD",
		"HOME":     "DASHBOARD",
		"USERS":    "TAB USERS",
		"VIDEOS":   "TAB VIDEOS",
		"RELOAD":   "LOAD",
		"LIST":     "SHOW",
		"LS":       "SHOW",
		"RM":       "DELETE",
		"DEL":      "DELETE",
		"REMOVE":   "DELETE",
		"NEW":      "ADD",
		"DOWNLOAD": "REPORT",
		"SELECT":   "OPEN",
		"PLAY":     "OPEN",
		"LANGUAGE": "LANG",
		"?":        "HELP",
		"/?":       "HELP",
		"-H":       "HELP",
		"H":        "HELP",
		"EXIT":     "QUIT",
		"BYE":      "QUIT",
		"Q":        "QUIT",
	}
)

// Parse parses a command from the given text. If it cannot, a non-nil error
// is returned whose cmderr.ConsoleMessage explains the problem.
//
// If an empty string or a string composed only of whitespace is passed in, nil
// error is returned and a zero value for Command will be returned.
func Parse(toParse string) (Command, error) {
	var parsedCmd Command

	originalTokens := strings.Fields(toParse)

	// expand verb aliases up to 2 words long
	tokens := ExpandAliases(originalTokens, 2)

	// some simple sanity checking, make sure we at least have a command
	if len(tokens) < 1 {
		return parsedCmd, nil
	}

	parsedCmd.Verb = strings.ToUpper(tokens[0])
	args := tokens[1:]
	typed := originalTokens[0]

	switch parsedCmd.Verb {
	case Help:
		// help takes an optional argument
		if len(args) > 1 {
			return parsedCmd, cmderr.Interpreterf("Type %s or %s followed by a single command", typed, typed)
		}
		if len(args) == 1 {
			topic := ExpandAliases([]string{args[0]}, 1)
			parsedCmd.Target = strings.ToUpper(topic[0])
		}
	case Login:
		// username is optional; it is asked for if not given
		if len(args) > 1 {
			return parsedCmd, cmderr.Interpreterf("Usernames cannot contain spaces; type %s followed by just the username", typed)
		}
		if len(args) == 1 {
			parsedCmd.Target = args[0]
		}
	case Tab:
		if len(args) < 1 {
			return parsedCmd, cmderr.Interpreterf("I don't know which tab you want; try %s USERS or %s VIDEOS", typed, typed)
		}
		if len(args) > 1 {
			return parsedCmd, cmderr.Interpreterf("You can only switch to one tab at a time")
		}
		parsedCmd.Target = strings.ToLower(args[0])
	case Edit, Delete, Report, Open:
		if len(args) < 1 {
			return parsedCmd, cmderr.Interpreterf("I don't know what you want to %s; give its ID", strings.ToLower(typed))
		}
		if len(args) > 1 {
			return parsedCmd, cmderr.Interpreterf("You can only %s one thing at a time; give a single ID", strings.ToLower(typed))
		}
		parsedCmd.Target = args[0]
	case Set:
		if len(args) < 1 {
			return parsedCmd, cmderr.Interpreterf("I don't know what you want to set; try %s FIELD VALUE", typed)
		}
		if len(args) < 2 {
			return parsedCmd, cmderr.Interpreterf("I don't know what you want to set %s to", args[0])
		}
		parsedCmd.Target = strings.ToLower(args[0])
		parsedCmd.Value = afterFields(toParse, len(originalTokens)-len(args)+1)
	case Logout, Admin, Dashboard, Load, Show, Save, Cancel, Add, History, Refresh, Sidebar, Lang, Quit:
		// these take no additional args, make sure this is true
		if len(args) > 0 {
			errMsg := "You can't %s *something*; type %s by itself"
			return parsedCmd, cmderr.Interpreterf(errMsg, typed, typed)
		}
	default:
		return parsedCmd, cmderr.Interpreterf("I don't know what you mean by %q", typed)
	}

	return parsedCmd, nil
}

// afterFields returns s with its first n whitespace-separated fields and the
// whitespace around them removed.
func afterFields(s string, n int) string {
	s = strings.TrimSpace(s)
	for i := 0; i < n; i++ {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	return s
}

// ExpandAliases takes a slice of tokens of user input and runs alias expansion
// on it. Tokens are matched against VerbAliases case-insensitively; tokens that
// are not part of an expanded alias keep their case. The returned slice
// contains the same tokens but with aliases expanded.
//
// The unexpanded tokens slice is not modified during this operation.
//
// Aliases up to aliasLimit words long are supported. If it is less than 0, it
// is assumed to be 0. Passing 0 means the given tokens will be returned
// unchanged.
//
// Aliases will not be multi-expanded; that is, expansion is not applied to the
// results of an expansion; if the caller needs it, they will need to call
// ExpandAliases again on its output.
func ExpandAliases(tokens []string, aliasLimit int) []string {
	expandedTokens := append([]string{}, tokens...)
	if aliasLimit < 1 {
		return expandedTokens
	}

	// only modify verb up to minimum of limit and number of tokens
	if aliasLimit > len(tokens) {
		aliasLimit = len(tokens)
	}

	// longest match wins so that "GO BACK" is not read as "GO" and "BACK"
	for curLimit := aliasLimit; curLimit >= 1; curLimit-- {
		checkStr := strings.ToUpper(strings.Join(tokens[:curLimit], " "))
		expansion, ok := VerbAliases[checkStr]
		if ok {
			replacementTokens := strings.Fields(expansion)

			// we know we are operating from start of tokens passed in so we
			// can just replace all those in the checkStr
			expandedTokens = append(replacementTokens, tokens[curLimit:]...)

			// we guarantee only one single substitution, so we can immediately
			// exit
			return expandedTokens
		}
	}

	return expandedTokens
}
