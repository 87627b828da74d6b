// SPDX-License-Identifier: BSD-3-Clause

package file

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrIO marks an error as an operating-system I/O failure against a
// specific path. Use errors.Is(err, ErrIO) to detect this class without
// caring which path or syscall failed.
var ErrIO = errors.New("i/o error")

// ErrDeserialize marks an error as a failure to parse content read back
// from a file into the expected shape (a number, a boolean, or a
// kernel-formatted string such as ConfigFS's "major:minor" dev file).
var ErrDeserialize = errors.New("deserialization error")

// ErrInvariant marks a violated invariant or an unsupported operation,
// e.g. asking usb.GadgetInfo to read itself back from ConfigFS.
var ErrInvariant = errors.New("invariant violation")

// ErrIgnorable marks a condition that a caller may treat as a no-op
// rather than a failure — the canonical example is a short read from a
// character device whose length doesn't match the expected report
// size. errors.Is(err, ErrIgnorable) lets a receive loop `continue`
// instead of tearing down.
var ErrIgnorable = errors.New("ignorable condition")

// PathError wraps an underlying error with the path that was being
// operated on and a captured stack trace, mirroring the teacher's
// "%w: %w" sentinel-wrapping idiom but attaching enough context to
// reconstruct what filesystem operation failed and where.
type PathError struct {
	Kind  error
	Path  string
	Cause error
	Stack []byte
}

func (e *PathError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Cause)
}

func (e *PathError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func newIOError(path string, cause error) error {
	return &PathError{Kind: ErrIO, Path: path, Cause: cause, Stack: debug.Stack()}
}

func newDeserializeError(path string, cause error) error {
	return &PathError{Kind: ErrDeserialize, Path: path, Cause: cause, Stack: debug.Stack()}
}

// NewInvariantError builds an ErrInvariant-tagged error carrying a
// human-readable message and a captured stack trace, for provisioner
// wiring mistakes that have no associated filesystem path.
func NewInvariantError(msg string) error {
	return &PathError{Kind: ErrInvariant, Path: msg, Stack: debug.Stack()}
}

// NewIgnorableError builds an ErrIgnorable-tagged error describing why
// the condition at path was ignored.
func NewIgnorableError(path, reason string) error {
	return &PathError{Kind: ErrIgnorable, Path: path, Cause: errors.New(reason)}
}
