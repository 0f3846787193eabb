package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_DoesNotMutatePredefinedError(t *testing.T) {
	t.Parallel()

	detailed := ErrInvalidRating.WithDetails(map[string]interface{}{"stars": 9})
	assert.Nil(t, ErrInvalidRating.Details)
	assert.NotNil(t, detailed.Details)

	// The copy still matches its predefined variable.
	assert.True(t, errors.Is(detailed, ErrInvalidRating))
}

func TestWithError_WrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := InternalError("failed to load user").WithError(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
}

func TestIs_MatchesByCodeAndDomain(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrConcurrentUpdate.WithDetails("x"), ErrConcurrentUpdate))
	assert.False(t, errors.Is(ErrConcurrentUpdate, ErrSelfFollow))
	assert.False(t, errors.Is(ErrConcurrentUpdate, errors.New("other")))
}

func TestErrPartialFanout_CarriesCounts(t *testing.T) {
	t.Parallel()

	cause := errors.New("insert failed")
	err := ErrPartialFanout(cause, 2, 10)

	assert.Equal(t, CodePartialFanout, err.Code)
	assert.True(t, errors.Is(err, cause))

	details, ok := err.Details.(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 2, details["failed"])
	assert.Equal(t, 10, details["total"])
}

func TestMarshalJSON_HidesInternalFields(t *testing.T) {
	t.Parallel()

	err := InternalError("database exploded").WithError(errors.New("secret dsn"))
	payload, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	assert.NotContains(t, string(payload), "secret dsn")
	assert.NotContains(t, string(payload), "500")
	assert.Contains(t, string(payload), "INTERNAL_ERROR")
}

func TestErrNotFound_WrapsRepositoryError(t *testing.T) {
	t.Parallel()

	cause := errors.New("recipe not found")
	err := ErrNotFound(cause)

	assert.Equal(t, http.StatusNotFound, err.HTTPCode)
	assert.True(t, errors.Is(err, cause))
}
