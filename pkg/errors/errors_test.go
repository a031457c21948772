package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidParameter, "width must be > 0, got %g", -1.0)

	if err.Code != ErrCodeInvalidParameter {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidParameter)
	}

	expected := "INVALID_PARAMETER: width must be > 0, got -1"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeGeometry, cause, "extrude failed")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodePortNotFound, "test"),
			code:     ErrCodePortNotFound,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodePortNotFound, "test"),
			code:     ErrCodePortMismatch,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeGeometry, New(ErrCodeInvalidParameter, "inner"), "outer"),
			code:     ErrCodeGeometry,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeGeometry, New(ErrCodeInvalidParameter, "inner"), "outer"),
			code:     ErrCodeInvalidParameter,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("build straight: %w", New(ErrCodeCacheCollision, "x")),
			code:     ErrCodeCacheCollision,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidParameter,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidParameter,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsGeometry(t *testing.T) {
	if !IsGeometry(New(ErrCodePathDiscontinuity, "gap")) {
		t.Error("IsGeometry(PATH_DISCONTINUITY) = false, want true")
	}
	if !IsGeometry(New(ErrCodeGeometry, "inverted")) {
		t.Error("IsGeometry(GEOMETRY) = false, want true")
	}
	if IsGeometry(New(ErrCodePortMismatch, "width")) {
		t.Error("IsGeometry(PORT_MISMATCH) = true, want false")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeImmutableComponent, "x")); got != ErrCodeImmutableComponent {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeImmutableComponent)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "cell %q not found", "mmi")); got != `cell "mmi" not found` {
		t.Errorf("UserMessage() = %v, want %v", got, `cell "mmi" not found`)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %v, want %v", got, "plain")
	}
}
