package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrUpstream, "list endpoint down")

	assert.True(t, errors.Is(clone, ErrUpstream))
	assert.False(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, "list endpoint down", clone.Message)
	assert.Equal(t, "registration service unavailable", ErrUpstream.Message)
}

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestWrappedErrorUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, ErrUpstream.Code, ErrUpstream.Status, "fetch list")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetch list: dial tcp: refused", err.Error())
}

func TestUpstreamDefaultsMessage(t *testing.T) {
	cause := errors.New("timeout")

	err := Upstream(cause, "")
	assert.Equal(t, ErrUpstream.Message, err.Message)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "slot already taken", Upstream(cause, "slot already taken").Message)
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "fetch list", MessageOf(Wrap(errors.New("refused"), ErrUpstream.Code, ErrUpstream.Status, "fetch list")))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Equal(t, "outer: inner", MessageOf(fmt.Errorf("outer: %w", errors.New("inner"))))
}
