package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesAppErrorStatus(t *testing.T) {
	base := NotFound("project", "p1")
	wrapped := Wrap(fmt.Errorf("loading: %w", base), "get project")

	assert.Equal(t, CodeNotFound, wrapped.Code)
	assert.Equal(t, http.StatusNotFound, wrapped.HTTPStatus)
	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Message, "project with id 'p1' not found")
}

func TestWrapPlainErrorBecomesInternal(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(cause, "save dashboard")

	require.NotNil(t, wrapped)
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestStatusHelpers(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("x")))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(Conflict("revision mismatch")))
	assert.True(t, IsBadRequest(Validation("name", "must not be blank")))
	assert.True(t, IsBadRequest(BadRequest("missing id")))
	assert.False(t, IsBadRequest(Unauthorized("no session")))
	assert.True(t, IsConflict(fmt.Errorf("outer: %w", Conflict("stale"))))

	appErr, ok := As(fmt.Errorf("outer: %w", Forbidden("nope")))
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, appErr.Code)
}

func TestNotFoundWithoutID(t *testing.T) {
	assert.Equal(t, "organization not found", NotFound("organization", "").Message)
}
