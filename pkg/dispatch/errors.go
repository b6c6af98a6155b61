package dispatch

import (
	"errors"
	"fmt"
	"io/fs"
)

// MissingParameterError is returned when a template references a
// parameter that the request didn't supply.
type MissingParameterError struct{ Name string }

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q", e.Name)
}

// FileError is returned when a file read or write fails.
type FileError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s file %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// NotFound reports whether the error is a read of a missing file. A
// missing parent directory on write is a plain write failure, not a
// not-found condition.
func (e *FileError) NotFound() bool {
	return e.Op == "read" && errors.Is(e.Err, fs.ErrNotExist)
}

// SpawnError is returned when the shell interpreter could not be
// started at all. A started command that exits non-zero is not an error.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
