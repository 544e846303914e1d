package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesPredefined(t *testing.T) {
	err := Clone(ErrInvalidTimeFormat, "invalid time format: 25:61")

	assert.True(t, errors.Is(err, ErrInvalidTimeFormat))
	assert.False(t, errors.Is(err, ErrInvalidDateFormat))
	assert.Equal(t, "invalid time format: 25:61", err.Error())
	assert.Equal(t, "invalid time format", ErrInvalidTimeFormat.Message)
}

func TestWrapAsKeepsKind(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapAs(ErrPersistence, cause, "")

	require.True(t, errors.Is(err, ErrPersistence))
	require.True(t, errors.Is(err, cause))
	require.True(t, err.Retryable)
	require.Equal(t, http.StatusInternalServerError, err.Status)
	require.Equal(t, "failed to persist event: connection refused", err.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("handler: %w", ErrMissingImage)
	assert.Equal(t, ErrMissingImage.Code, FromError(wrapped).Code)

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}
