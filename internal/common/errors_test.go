package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserErrorMessage(t *testing.T) {
	err := NewUserError("invalid amount \"abc\"", fmt.Errorf("parse failed"))
	want := "invalid amount \"abc\": parse failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := NewUserError("something went wrong", nil)
	if bare.Error() != "something went wrong" {
		t.Errorf("Error() = %q, want the message alone", bare.Error())
	}
}

func TestUserErrorUnwrapsToSentinel(t *testing.T) {
	err := NewUserError("delimiter must be a single character", ErrValidation)

	if !errors.Is(err, ErrValidation) {
		t.Error("wrapped sentinel must survive errors.Is")
	}

	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatal("errors.As must recover the UserError")
	}
	if userErr.UserMessage != "delimiter must be a single character" {
		t.Errorf("UserMessage = %q", userErr.UserMessage)
	}
}
