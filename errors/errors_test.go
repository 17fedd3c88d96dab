/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestMissingFieldError(t *testing.T) {
	t.Run("named field", func(t *testing.T) {
		err := NewMissingFieldError("Person", "cpf")

		expected := `Person: missing required field "cpf"`
		if err.Error() != expected {
			t.Errorf("Expected error message %q, got %q", expected, err.Error())
		}
		if !IsMissingField(err) {
			t.Error("MissingFieldError should match ErrMissingField")
		}
		if IsNotFound(err) {
			t.Error("MissingFieldError with a field should not match ErrNotFound")
		}
	})

	t.Run("empty item", func(t *testing.T) {
		err := NewMissingFieldError("Book", "")

		expected := "Book: item is empty"
		if err.Error() != expected {
			t.Errorf("Expected error message %q, got %q", expected, err.Error())
		}
		if !IsMissingField(err) {
			t.Error("empty item should match ErrMissingField")
		}
		if !IsNotFound(err) {
			t.Error("empty item should match ErrNotFound")
		}
	})
}

func TestMalformedKeyError(t *testing.T) {
	err := NewMalformedKeyError("firstName", `piece "firstName" has no ':'`)

	expected := `malformed continuation key "firstName": piece "firstName" has no ':'`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !IsMalformedContinuationKey(err) {
		t.Error("MalformedKeyError should match ErrMalformedContinuationKey")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "limit",
			message:  "must be a positive integer",
			expected: `validation failed for field "limit": must be a positive integer`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "request body is not valid JSON",
			expected: "validation failed: request body is not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Run("nil cause", func(t *testing.T) {
		if err := NewStoreError("GetItem", "person", nil); err != nil {
			t.Errorf("Expected nil, got %v", err)
		}
	})

	t.Run("plain failure", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewStoreError("PutItem", "person", cause)

		expected := `PutItem on table "person" failed: boom`
		if err.Error() != expected {
			t.Errorf("Expected error message %q, got %q", expected, err.Error())
		}
		if !IsStoreError(err) {
			t.Error("StoreError should match ErrStore")
		}
		if !errors.Is(err, cause) {
			t.Error("StoreError should unwrap to its cause")
		}
		if errors.Is(err, ErrStoreUnavailable) {
			t.Error("non-retryable failure should not match ErrStoreUnavailable")
		}
	})

	t.Run("throttled", func(t *testing.T) {
		cause := &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
		err := NewStoreError("Query", "person", cause)

		if !errors.Is(err, ErrStoreUnavailable) {
			t.Error("throttling should match ErrStoreUnavailable")
		}
	})
}

func TestErrorWrapping(t *testing.T) {
	original := NewMissingFieldError("Person", "")
	wrapped := fmt.Errorf("delete failed: %w", original)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
	if !IsMissingField(wrapped) {
		t.Error("IsMissingField should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrMissingField,
		ErrMalformedContinuationKey,
		ErrInvalidInput,
		ErrStore,
		ErrStoreUnavailable,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
