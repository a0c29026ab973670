package domain

import (
	"errors"
	"fmt"
	"io/fs"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// UserError is an operator-facing failure with remediation text. Command
// handlers detect it with errors.As and print the message without internals;
// everything else propagates unchanged and is logged in full.
type UserError struct {
	Op   string
	Path m.Path
	Msg  string
	Err  error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Msg)
}

func (e *UserError) Unwrap() error { return e.Err }

// translateFileError maps the two filesystem failures the engine has
// remediation text for onto UserError values. Any other cause is wrapped
// as-is so unexpected errors keep their full detail.
func translateFileError(op string, path m.Path, err error, missingMsg, permMsg string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &UserError{Op: op, Path: path, Msg: missingMsg, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &UserError{Op: op, Path: path, Msg: permMsg, Err: err}
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
