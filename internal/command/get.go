package command

import (
	"bufio"
	"fmt"

	"github.com/dekarrin/vadm/internal/cmderr"
)

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of user input. It will block until one
	// is ready. If there is an error or input is at end (EOF), the returned
	// string will be empty.
	//
	// When error is io.EOF, string will always be empty. If EOF was encountered
	// on a call but some input was received, the input will be returned and
	// error will be nil, and the next call to ReadCommand will return "",
	// io.EOF.
	ReadCommand() (string, error)

	// Close performs any operations required to clean the resources created by
	// the Reader. It should be called at least once when the Reader is no
	// longer needed.
	Close() error
}

// Get obtains a single command from input by reading from the provided Reader.
// It reads a line of input and attempts to parse it as a valid command,
// returning that command if it is successful. If it is not, error output is
// printed to the ostream and input is read until a valid command is
// encountered. Before each read, prompt is called if it is not nil.
//
// Note that this function does not check if the command can be carried out
// in the current state of the console, only that a Command can be parsed from
// the user input.
func Get(cmdStream Reader, ostream *bufio.Writer, prompt func() error) (Command, error) {
	var cmd Command
	gotValidCommand := false

	for !gotValidCommand {
		if prompt != nil {
			if err := prompt(); err != nil {
				return cmd, err
			}
		}

		// IO to get input:
		input, err := cmdStream.ReadCommand()
		if err != nil {
			return cmd, fmt.Errorf("could not get input: %w", err)
		}

		// now attempt to parse the input
		cmd, err = Parse(input)
		if err != nil {
			consoleMessage := cmderr.ConsoleMessage(err)
			errMsg := fmt.Sprintf("%v\nTry HELP for valid commands\n", consoleMessage)
			// IO to report error and prompt user to try again
			if _, err := ostream.WriteString(errMsg); err != nil {
				return cmd, fmt.Errorf("could not write output: %w", err)
			}
			if err := ostream.Flush(); err != nil {
				return cmd, fmt.Errorf("could not flush output: %w", err)
			}
		} else if cmd.Verb != "" {
			gotValidCommand = true
		}
	}

	return cmd, nil
}
