package nfc

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingSelected is returned when a conversion is requested with no
	// checked nodes. No filesystem operation is attempted.
	ErrNothingSelected = errors.New("no items selected")

	// ErrBusy is returned when a scan or conversion is started while
	// another one is still running.
	ErrBusy = errors.New("another scan or conversion is in progress")

	// ErrTargetExists matches rename failures where the NFC name is taken.
	ErrTargetExists = errors.New("target already exists")

	// ErrNotFound matches rename failures where the source entry is gone.
	ErrNotFound = errors.New("source not found")
)

// FailureReason classifies why a single rename failed.
type FailureReason string

const (
	ReasonTargetExists FailureReason = "target_exists"
	ReasonNotFound     FailureReason = "not_found"
	ReasonIOError      FailureReason = "io_error"
)

// RenameError describes a failed rename of one entry.
type RenameError struct {
	Reason FailureReason
	Path   string
	Err    error
}

func (e *RenameError) Error() string {
	switch e.Reason {
	case ReasonTargetExists:
		return fmt.Sprintf("%s: target already exists", e.Path)
	case ReasonNotFound:
		return fmt.Sprintf("%s: not found", e.Path)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the reason sentinels.
func (e *RenameError) Is(target error) bool {
	switch target {
	case ErrTargetExists:
		return e.Reason == ReasonTargetExists
	case ErrNotFound:
		return e.Reason == ReasonNotFound
	}
	return false
}

// Detail returns the underlying cause as text, or "" when there is none.
func (e *RenameError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
