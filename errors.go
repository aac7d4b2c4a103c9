package assets

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned by Cache.Add when the id is already cached.
	// Callers treat it as "already loaded".
	ErrAlreadyExists = errors.New("assets: asset already exists")
	// ErrNotFound reports a missing metadata file or an unresolved reference.
	ErrNotFound = errors.New("assets: not found")
	// ErrTypeMismatch reports a typed lookup against a different concrete type.
	ErrTypeMismatch = errors.New("assets: type mismatch")
	// ErrDecode reports malformed persisted state.
	ErrDecode = errors.New("assets: decode failure")
	// ErrUnknownKind reports a kind with no name or no registered schema.
	ErrUnknownKind = errors.New("assets: unknown kind")
	// ErrIDMismatch reports an Add whose id differs from the asset's own id.
	ErrIDMismatch = errors.New("assets: id does not match asset")
	// ErrNoStore reports a metadata operation on a cache without a store.
	ErrNoStore = errors.New("assets: metadata store not configured")
)

// DecodeError describes persisted content that could not be parsed. Field is
// empty when the whole document is malformed.
type DecodeError struct {
	Path  string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("assets: decode %s field %q: %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("assets: decode field %q: %v", e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("assets: decode %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("assets: decode: %v", e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// TypeMismatchError is returned by typed lookups and reference restores.
type TypeMismatchError struct {
	ID   ID
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("assets: asset %s is %s, not %s", e.ID, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func wrapDecodeError(path, field string, err error) error {
	if err == nil {
		return nil
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		if decodeErr.Path == "" {
			decodeErr.Path = path
		}
		if decodeErr.Field == "" {
			decodeErr.Field = field
		}
		return decodeErr
	}
	return &DecodeError{Path: path, Field: field, Err: err}
}

// NewDecodeError builds a DecodeError for store implementations outside this
// package.
func NewDecodeError(path string, err error) error {
	return wrapDecodeError(path, "", err)
}
