// Package mediaerr classifies media load failures and provides consistent
// error formatting for user-facing messages.
package mediaerr

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Load operations
	OpLoad    Op = "load media"
	OpPreload Op = "preload clip"

	// Waveform operations
	OpExtract Op = "extract waveform"
)

// Class partitions load failures into the two recovery strategies.
type Class int

const (
	// ClassRecoverable marks transient conditions worth retrying
	// (network stalls, truncated reads).
	ClassRecoverable Class = iota
	// ClassFatal marks failures retrying cannot help
	// (decode errors, unsupported formats, caller aborts).
	ClassFatal
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassRecoverable:
		return "Recoverable"
	case ClassFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// LoadError is a classified media load failure.
type LoadError struct {
	Locator string
	Class   Class
	Code    string // short category id, e.g. "network", "decode", "aborted"
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s (%s): %v", e.Locator, e.Code, e.Class, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Recoverable wraps err as a transient load failure for locator.
func Recoverable(locator, code string, err error) *LoadError {
	return &LoadError{Locator: locator, Class: ClassRecoverable, Code: code, Err: err}
}

// Fatal wraps err as a terminal load failure for locator.
func Fatal(locator, code string, err error) *LoadError {
	return &LoadError{Locator: locator, Class: ClassFatal, Code: code, Err: err}
}

// ExtractionError is a fetch or decode failure during waveform analysis.
// Extraction failures are never cached, so a later request re-attempts.
type ExtractionError struct {
	Locator string
	Stage   string // "fetch" or "decode"
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract waveform %s: %s: %v", e.Locator, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrSeekTimeout reports that frame confirmation never arrived before the
// seek deadline. Completion still fires; callers observe the degraded
// accuracy through the exact flag of the completion callback.
var ErrSeekTimeout = errors.New("seek confirmation timed out")

// ErrAborted reports a load cancelled by the caller.
var ErrAborted = errors.New("load aborted")

// ClassOf classifies an arbitrary error. Pre-classified LoadErrors keep
// their class; network timeouts and truncated reads are recoverable;
// everything else (decode, unsupported format, aborts) is fatal.
func ClassOf(err error) Class {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Class
	}
	if errors.Is(err, ErrAborted) {
		return ClassFatal
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ClassRecoverable
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassRecoverable
	}
	return ClassFatal
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
