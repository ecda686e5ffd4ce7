// Package errs provides the unified error type used across azurefs.
//
// Every subsystem (the blob store driver, the filesystem layer, …) wraps
// its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// backend-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.KindIO, "range download failed", azErr)
//
//	// In a caller — check error kind:
//	if errs.IsNotFound(err) {
//	    // blob or container does not exist
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error without exposing backend-specific codes.
// The Azure driver maps its native errors to one of these kinds, giving
// callers a single consistent API.
type Kind int

const (
	KindUnknown          Kind = iota
	KindNotFound              // blob or container does not exist
	KindIO                    // transport or backend storage failure
	KindNotSupported          // write, sync, and other unimplemented operations
	KindConfig                // missing or invalid configuration from the caller
	KindPermissionDenied      // access denied / credential failure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindNotSupported:
		return "not_supported"
	case KindConfig:
		return "config"
	case KindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all azurefs subsystems.
// The driver produces it; callers inspect it via the Is* predicates below.
//
// Path names the file the operation was attributed to, when known. Code
// and Status carry the backend storage error code (e.g. "BlobNotFound")
// and the HTTP status of the failed request, when the backend supplied
// them.
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Code    string
	Status  int
	Cause   error // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Path != "" {
		s += fmt.Sprintf(" (path %q)", e.Path)
	}
	if e.Code != "" {
		s += fmt.Sprintf(" (code %s, status %d)", e.Code, e.Status)
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// WithPath returns a copy of e attributed to path. The receiver is not
// modified, so a driver-level error can be annotated at several call
// sites independently.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithBackend returns a copy of e carrying the backend error code and
// HTTP status of the failed request.
func (e *Error) WithBackend(code string, status int) *Error {
	c := *e
	c.Code = code
	c.Status = status
	return &c
}

// --- Predicates ---

// IsNotFound reports whether err represents a missing blob or container.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsIO reports whether err is a transport or backend storage failure.
func IsIO(err error) bool {
	return kindOf(err) == KindIO
}

// IsNotSupported reports whether err signals an operation this adapter
// does not implement (writes, sync, directory mutation).
func IsNotSupported(err error) bool {
	return kindOf(err) == KindNotSupported
}

// IsConfig reports whether err was caused by missing or invalid
// configuration supplied by the caller.
func IsConfig(err error) bool {
	return kindOf(err) == KindConfig
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == KindPermissionDenied
}

// kindOf extracts the Kind from any error in the chain.
func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
