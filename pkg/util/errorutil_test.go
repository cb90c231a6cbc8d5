package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("login: %w", NewInvalidCredentials())
	de := ToDomainError(wrapped)
	assert.Equal(t, "INVALID_CREDENTIALS", de.Code)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)

	de = ToDomainError(fiber.NewError(http.StatusNotFound, "no route"))
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "no route", de.Message)

	cause := errors.New("disk on fire")
	de = ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)
}
