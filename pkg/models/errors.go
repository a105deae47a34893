package models

import (
	"errors"
	"fmt"
)

/* NotFoundError */

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (*NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

/* BadRequestError */

var ErrBadRequest = errors.New("bad request")

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

func (*BadRequestError) Unwrap() error {
	return ErrBadRequest
}

func NewBadRequestError(message string) error {
	return &BadRequestError{Message: message}
}

/* EmbeddingUnavailableError */

// ErrEmbeddingUnavailable indicates the embedding provider was unreachable
// or returned a malformed payload. Retryable; the whole request aborts with
// no partial writes.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

type EmbeddingUnavailableError struct {
	Message string
	Err     error
}

func (e *EmbeddingUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding provider unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("embedding provider unavailable: %s", e.Message)
}

func (*EmbeddingUnavailableError) Unwrap() error {
	return ErrEmbeddingUnavailable
}

func NewEmbeddingUnavailableError(message string, err error) error {
	return &EmbeddingUnavailableError{Message: message, Err: err}
}

// ErrInsufficientProfileData indicates a student has no usable skill or
// interest tokens. Client-correctable.
var ErrInsufficientProfileData = errors.New(
	"student profile has no usable skills or interests",
)

// ErrNoCapacityAvailable indicates every scored mentor is at capacity.
// Distinct from not-found so callers can message "no mentors currently
// available".
var ErrNoCapacityAvailable = errors.New("no mentors with remaining capacity")

// ErrMentorAtCapacity is returned by AssignmentStore.AssignIfCapacity when a
// single candidate mentor is full. The assignment walk continues to the next
// ranked candidate.
var ErrMentorAtCapacity = errors.New("mentor is at capacity")

// ErrDegenerateVector indicates a zero-norm vector was passed to the
// similarity scorer. Localized: the affected mentor is skipped, scoring
// continues.
var ErrDegenerateVector = errors.New("zero-norm vector in similarity computation")

// ErrDimensionMismatch indicates two vectors of different dimension were
// compared. This is a programming fault and aborts the request.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

/* AdvisoryLockError */

var ErrLockAcquisitionFailed = errors.New("failed to acquire advisory lock")

type AdvisoryLockError struct {
	Err error
}

func (e AdvisoryLockError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to acquire advisory lock: %v", e.Err)
	}
	return ErrLockAcquisitionFailed.Error()
}

func (AdvisoryLockError) Unwrap() error {
	return ErrLockAcquisitionFailed
}

func NewAdvisoryLockError(err error) error {
	return &AdvisoryLockError{Err: err}
}
