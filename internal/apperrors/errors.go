// Package apperrors defines the error taxonomy shared by services,
// repositories and the HTTP layer. The api package owns the mapping
// to status codes; everything below it returns these types.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError points at a single bad request field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries one or more field errors. Maps to HTTP 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Path, e.Fields[0].Message)
}

// Validation builds a single-field validation error.
func Validation(path, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Path: path, Message: message}}}
}

func (e *ValidationError) Add(path, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
	return e
}

// ScheduleConflict is the blocking schedule reported with 409 overlap
// rejections. Enough for the client to render "blocked by schedule X,
// from T1 to T2".
type ScheduleConflict struct {
	ID      string    `json:"id"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	JobID   string    `json:"jobId"`
}

// ConflictError maps to HTTP 409. Resource names what is blocked:
// "pilot" or "drone" for overlaps, the entity name for referential
// guards and uniqueness violations. Conflict is nil for the latter.
type ConflictError struct {
	Resource string
	Message  string
	Conflict *ScheduleConflict
}

func (e *ConflictError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("%s: blocked by schedule %s", e.Message, e.Conflict.ID)
	}
	return e.Message
}

// Overlap builds the 409 returned when a window collides with an
// active schedule on the same pilot or drone.
func Overlap(resource string, conflict ScheduleConflict) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  fmt.Sprintf("%s is already scheduled in this time window", resource),
		Conflict: &conflict,
	}
}

// Conflict builds a 409 without a blocking schedule (referential
// guards, duplicate serial numbers).
func Conflict(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
