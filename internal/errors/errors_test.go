package errors

import (
	"fmt"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrOrderNotFound, "looking up order")
	if !Is(err, ErrOrderNotFound) {
		t.Errorf("wrapped error lost its sentinel: %v", err)
	}

	err = Wrapf(ErrUnknownMode, "mode %q", "bogus")
	if !Is(err, ErrUnknownMode) {
		t.Errorf("wrapped error lost its sentinel: %v", err)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
}

func TestValidationErrorRoundTrip(t *testing.T) {
	err := NewValidationError("quantity", -5, "quantity must be positive")

	wrapped := fmt.Errorf("place order: %w", err)
	var verr *ValidationError
	if !As(wrapped, &verr) {
		t.Fatalf("As failed on %v", wrapped)
	}
	if verr.Field != "quantity" {
		t.Errorf("field = %q", verr.Field)
	}
}

func TestBrokerErrorUnwrap(t *testing.T) {
	err := NewBrokerError("AB1004", "session lapsed", ErrSessionExpired)
	if !Is(err, ErrSessionExpired) {
		t.Errorf("broker error does not unwrap to its cause: %v", err)
	}
}
