package cli

import (
	"errors"
	"fmt"

	"pulse-cli/internal/api"
	"pulse-cli/internal/collection"
	"pulse-cli/internal/model"
)

var errNotSignedIn = errors.New("not signed in; run `pulse login` first")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// opError carries the message the controller showed the user, keeping the cause for errors.Is.
type opError struct {
	msg string
	err error
}

func (e opError) Error() string { return e.msg }

func (e opError) Unwrap() error { return e.err }

// controllerError prefers the error notification the controller just emitted.
func (rt *runtime) controllerError(err error) error {
	if err == nil || errors.Is(err, collection.ErrValidation) || errors.Is(err, collection.ErrBusy) {
		return err
	}
	if n, ok := rt.notes.Last(); ok && n.Kind == model.NotificationError {
		return opError{msg: n.Text, err: err}
	}
	return err
}

// authError surfaces the server's detail ("Incorrect email or password") instead of the
// raw HTTP error.
func authError(err error) error {
	if msg, ok := api.ServerMessage(err); ok {
		return opError{msg: msg, err: err}
	}
	return err
}
