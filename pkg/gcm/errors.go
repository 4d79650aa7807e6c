package gcm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSpecialEntry matches every MissingSpecialEntryError via errors.Is
	ErrMissingSpecialEntry = errors.New("missing special entry")
	ErrNameBankOverflow    = errors.New("FST name bank exceeds 16-bit name offsets")
	ErrOffsetOverflow      = errors.New("value does not fit a 32-bit FST field")
	ErrInvalidFST          = errors.New("invalid FST")
	ErrFSTSizeMismatch     = errors.New("FST length estimate does not match the built table")
	ErrUnsafeName          = errors.New("name is not a single path element")
)

// MissingSpecialEntryError reports a reserved directory or file that is absent from
// the virtual tree.
type MissingSpecialEntryError struct {
	Container string
	Expected  string
}

func (e *MissingSpecialEntryError) Error() string {
	return fmt.Sprintf("the %s folder contains no %s", e.Container, e.Expected)
}

func (e *MissingSpecialEntryError) Is(target error) bool {
	return target == ErrMissingSpecialEntry
}

func missingEntry(container, expected string) error {
	return &MissingSpecialEntryError{Container: container, Expected: expected}
}

// IOError wraps a read, write, seek or create failure with the path and operation
// being attempted. For image writes the path is the virtual path or region name.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("couldn't %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioError(op, path string, err error) error {
	return &IOError{Path: path, Op: op, Err: err}
}

// Operations recorded in IOError.Op
const (
	OpCreate = "create"
	OpMkdir  = "create directory"
	OpWrite  = "write"
	OpSeek   = "seek"
	OpRead   = "read"
	OpOpen   = "open"
)
