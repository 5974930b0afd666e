package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestErrorPredicates(t *testing.T) {
	assert.Equal(t, IsValidation(NewValidationError("bad %s", "input")), true)
	assert.Equal(t, IsNotFound(NewNotFoundError("container x")), true)
	assert.Equal(t, IsPermissionDenied(NewPermissionDeniedError("container x")), true)
	assert.Equal(t, IsExpired(NewExpiredError("share link")), true)

	assert.Equal(t, IsValidation(NewNotFoundError("x")), false)
	assert.Equal(t, IsNotFound(errors.New("plain")), false)
	assert.Equal(t, IsExpired(nil), false)
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	base := NewExpiredError("share link")
	wrapped := fmt.Errorf("using link: %w", base)
	assert.Equal(t, IsExpired(wrapped), true)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewGatewayError("request failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, NewValidationError("name too long").UserMessage(), "name too long")
	assert.Equal(t, NewNotFoundError("container x").UserMessage(), "Not found: container x")
	assert.Equal(t, NewPermissionDeniedError("container x").UserMessage(), "You don't have permission to do that.")
	assert.Equal(t, NewExpiredError("share link").UserMessage(), "This invitation or link is no longer valid.")
	assert.Equal(t, (&Error{Type: ErrorTypeGateway}).UserMessage(), "The server could not be reached. Please try again.")
}
