package apperrors

import (
	"errors"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestValidationErrorError(t *testing.T) {
	withField := &ValidationError{Field: "tenure", Message: "must be positive"}
	if withField.Error() != "validation failed for field 'tenure': must be positive" {
		t.Errorf("unexpected message: %q", withField.Error())
	}

	withoutField := &ValidationError{Message: "missing input"}
	if withoutField.Error() != "validation failed: missing input" {
		t.Errorf("unexpected message: %q", withoutField.Error())
	}
}

func TestNewValidationErrorUnwrapsToSentinel(t *testing.T) {
	err := NewValidationError("amount", "must be greater than zero")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected error to wrap ErrValidation, got %v", err)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError in chain, got %v", err)
	}
	if ve.Field != "amount" {
		t.Errorf("expected field 'amount', got %q", ve.Field)
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDatabaseError(cause, "failed to save loan")

	if !errors.Is(err, ErrDatabase) {
		t.Errorf("expected error to wrap ErrDatabase, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected error to wrap original cause, got %v", err)
	}
}
