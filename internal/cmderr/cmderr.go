// Package cmderr contains the error type used by the console to report input
// that could not be understood or acted on. Errors carry two messages: one
// written for the operator at the console and a technical one for logs.
package cmderr

import "fmt"

// interpreterError is an error caused by attempting to interpret console
// input. Either the input could not be understood or it specifies doing
// something that is impossible or not allowed at the current time.
type interpreterError struct {
	msg   string
	human string
	wrap  error
}

func (e *interpreterError) Error() string {
	return e.msg
}

// ConsoleMessage shows the message that should be displayed at the console to
// describe the error.
func (e *interpreterError) ConsoleMessage() string {
	return e.human
}

// Unwrap gives the error that the interpreterError wraps, if it wraps one.
func (e *interpreterError) Unwrap() error {
	return e.wrap
}

// Interpreter returns a new error that has both the message to show the
// operator and the technical description of the error.
func Interpreter(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q)", human)
	}
	return &interpreterError{
		msg:   technical,
		human: human,
	}
}

// Interpreterf returns a new error that has a message to show to the operator
// and an automatically generated Error() description.
func Interpreterf(humanFormat string, a ...interface{}) error {
	return Interpreter(fmt.Sprintf(humanFormat, a...), "")
}

// WrapInterpreter returns a new error that has both the message to show the
// operator and the technical description of the error, and that wraps the
// given error.
func WrapInterpreter(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got InterpreterError(%q): %v", human, e)
	}
	return &interpreterError{
		msg:   technical,
		human: human,
		wrap:  e,
	}
}

// ConsoleMessage gets the message to display to the console for the given
// error. If it was created by this package, the operator-facing message is
// returned. Otherwise, err.Error() is returned.
func ConsoleMessage(err error) string {
	if intErr, ok := err.(*interpreterError); ok {
		return intErr.ConsoleMessage()
	}
	return err.Error()
}
