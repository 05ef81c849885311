package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("application: not found")
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSenderNotConfigured is returned by send operations when no delivery channel is wired.
	ErrSenderNotConfigured = errors.New("application: reminder sender not configured")
)

// ValidationError maps input field names to human readable problems. The
// HTTP layer renders it as a 422 with one entry per field.
type ValidationError struct {
	FieldErrors map[string]string
}

func fieldError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	fields := v.Fields()
	if len(fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Fields lists the offending field names in sorted order.
func (v *ValidationError) Fields() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add keeps the first message recorded for a field, so "end is required"
// is not overwritten by a later ordering complaint.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}
