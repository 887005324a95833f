// Package diag adapts a parse or eval error into a message fit to print to
// a terminal, separate from the technical Error() string fasteval itself
// returns.
package diag

import "fmt"

// evalDiagnostic pairs a technical error message with a friendlier one to
// show an interactive user, optionally wrapping an underlying error.
type evalDiagnostic struct {
	msg      string
	friendly string
	wrap     error
}

func (e *evalDiagnostic) Error() string { return e.msg }

// Friendly returns the message meant for an interactive user.
func (e *evalDiagnostic) Friendly() string { return e.friendly }

// Unwrap gives the error this diagnostic wraps, if any.
func (e *evalDiagnostic) Unwrap() error { return e.wrap }

// New returns an error carrying both a friendly message and a technical
// one. An empty technical message is derived from friendly.
func New(friendly, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got error(%q)", friendly)
	}
	return &evalDiagnostic{msg: technical, friendly: friendly}
}

// Newf is New with the friendly message built from a format string.
func Newf(friendlyFormat string, a ...interface{}) error {
	return New(fmt.Sprintf(friendlyFormat, a...), "")
}

// Wrap returns an error carrying both messages and wrapping cause.
func Wrap(cause error, friendly, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got error(%q)", friendly)
	}
	return &evalDiagnostic{msg: technical, friendly: friendly, wrap: cause}
}

// Wrapf is Wrap with the friendly message built from a format string.
func Wrapf(cause error, friendlyFormat string, a ...interface{}) error {
	return Wrap(cause, fmt.Sprintf(friendlyFormat, a...), "")
}

// Friendly returns the message to show an interactive user for err. If err
// is not one produced by this package, its Error() string is returned.
func Friendly(err error) string {
	if d, ok := err.(*evalDiagnostic); ok {
		return d.Friendly()
	}
	return err.Error()
}
