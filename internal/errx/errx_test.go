package errx_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tokodash/internal/errx"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestAppErrorWrapping(t *testing.T) {
	err := fmt.Errorf("resolve item: %w", errx.BadRequest(errBoom, "Unknown moderation list."))

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
	assert.Equal(t, "Unknown moderation list.", errx.MessageOf(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestPlainErrorsFallBackToSystemMessage(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, errx.StatusOf(errBoom))
	assert.Equal(t, errx.SystemErrorMessage, errx.MessageOf(errBoom))

	internal := errx.Internal(errBoom)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, errx.SystemErrorMessage, errx.MessageOf(internal))
}

func TestAppErrorWithoutCause(t *testing.T) {
	err := errx.New(nil, http.StatusNotFound, errx.NotFoundMessage)
	assert.Equal(t, errx.NotFoundMessage, err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
