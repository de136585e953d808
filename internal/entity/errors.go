package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
)

type EncodeErrorKind string

const (
	EncodeTimeout       EncodeErrorKind = "timeout"
	EncodeEncoderFailed EncodeErrorKind = "encoder_failed"
)

// EncodeError is a per-item encoder failure. Batch callers record it and move on.
type EncodeError struct {
	Kind       EncodeErrorKind
	Diagnostic string
	Err        error
}

func (e *EncodeError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("encode %s", e.Kind)
	}
	return fmt.Sprintf("encode %s: %s", e.Kind, e.Diagnostic)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is an EncodeError caused by the deadline.
func IsTimeout(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee) && ee.Kind == EncodeTimeout
}

type DispatchErrorKind string

const DispatchWorkerUnavailable DispatchErrorKind = "worker_unavailable"

// DispatchError means the whole dispatch attempt failed; nothing was enqueued.
type DispatchError struct {
	Kind       DispatchErrorKind
	StatusCode int
	Diagnostic string
	Err        error
}

func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("dispatch %s", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}

func (e *DispatchError) Unwrap() error { return e.Err }
