// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used in handlers and services — never in storage. It
// ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/toileapp/toile/internal/platform/apperr"
)

var (
	// personNameRegex matches the canonical person name format:
	// one capitalized word, a space, then an uppercase (hyphens allowed) word.
	// Accented characters are permitted in both halves.
	personNameRegex = regexp.MustCompile(`^[A-ZÀ-Ý][a-zà-ÿ-]+ [A-ZÀ-Ý][A-ZÀ-Ý-]*$`)

	// nodeIDRegex matches a 6-digit node or edge identifier.
	nodeIDRegex = regexp.MustCompile(`^[0-9]{6}$`)

	// relationTypeRegex matches a safe Cypher relationship type identifier.
	// Relationship types cannot be bound as query parameters, so anything
	// that fails this gate is rejected before query construction.
	relationTypeRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,31}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// # Standalone Predicates

// IsPersonName reports whether value matches the "Firstname LASTNAME" format.
func IsPersonName(value string) bool {
	return personNameRegex.MatchString(value)
}

// IsGraphID reports whether value is a valid 6-digit node/edge identifier.
func IsGraphID(value string) bool {
	return nodeIDRegex.MatchString(value)
}

// IsRelationType reports whether value is a safe relationship type identifier.
func IsRelationType(value string) bool {
	return relationTypeRegex.MatchString(value)
}

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// PersonName fails if the value is not in "Firstname LASTNAME" format.
func (v *Validator) PersonName(field, value string) *Validator {
	if !IsPersonName(value) {
		v.add(field, `Must be in "Firstname LASTNAME" format`)
	}
	return v
}

// GraphID fails if the value is not a 6-digit identifier.
func (v *Validator) GraphID(field, value string) *Validator {
	if !IsGraphID(value) {
		v.add(field, "Must be a 6-digit identifier")
	}
	return v
}

// RelationType fails if the value is not a safe relationship type identifier.
func (v *Validator) RelationType(field, value string) *Validator {
	if !IsRelationType(value) {
		v.add(field, "Must be an uppercase identifier (letters, digits, underscores)")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("level", level < 1, "Must be at least 1")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
