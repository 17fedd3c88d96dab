/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrMissingField is returned when an attribute map lacks a required field
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedContinuationKey is returned when a continuation key does not
	// match the field:value grammar
	ErrMalformedContinuationKey = errors.New("malformed continuation key")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrStore is returned when a call to the underlying store fails
	ErrStore = errors.New("store error")

	// ErrStoreUnavailable is returned when the store is throttling or unreachable
	ErrStoreUnavailable = errors.New("store unavailable")
)

// MissingFieldError represents an attribute map that could not be decoded into
// a record. An empty Field means the whole item was absent or empty, which is
// what the store returns for a key that does not exist.
type MissingFieldError struct {
	Type  string
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: item is empty", e.Type)
	}
	return fmt.Sprintf("%s: missing required field %q", e.Type, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	if target == ErrMissingField {
		return true
	}
	return e.Field == "" && target == ErrNotFound
}

// MalformedKeyError represents a continuation key that could not be decoded
type MalformedKeyError struct {
	Input  string
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed continuation key %q: %s", e.Input, e.Reason)
}

func (e *MalformedKeyError) Is(target error) bool {
	return target == ErrMalformedContinuationKey
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StoreError wraps a failure returned by the key-value store
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s on table %q failed: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	if target == ErrStore {
		return true
	}
	return target == ErrStoreUnavailable && IsRetryable(e.Err)
}

// Helper functions for creating errors

// NewMissingFieldError creates a new MissingFieldError
func NewMissingFieldError(recordType, field string) error {
	return &MissingFieldError{Type: recordType, Field: field}
}

// NewMalformedKeyError creates a new MalformedKeyError
func NewMalformedKeyError(input, reason string) error {
	return &MalformedKeyError{Input: input, Reason: reason}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewStoreError creates a new StoreError. A nil err yields nil.
func NewStoreError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingField checks if an error is a missing field error
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// IsMalformedContinuationKey checks if an error is a malformed continuation key error
func IsMalformedContinuationKey(err error) bool {
	return errors.Is(err, ErrMalformedContinuationKey)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStoreError checks if an error came from the store
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsStoreUnavailable checks if an error is a transient store failure
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsRetryable determines if a DynamoDB error is transient
func IsRetryable(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	switch {
	case errors.As(err, &throughput), errors.As(err, &limit), errors.As(err, &internal):
		return true
	}

	// AWS SDK errors may report retryability themselves
	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return false
}
