package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeInvalidParam:      http.StatusBadRequest,
		CodeSessionNotFound:   http.StatusNotFound,
		CodeInvalidTransition: http.StatusConflict,
		CodeSessionBusy:       http.StatusConflict,
		CodeGenerationFailed:  http.StatusBadGateway,
		CodeValidationFailed:  http.StatusUnprocessableEntity,
		CodeUnknown:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus, "code %s", code)
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	e := ErrInvalidTransition.WithDetail("step=LANDING")
	assert.Equal(t, "step=LANDING", e.Detail)
	assert.Empty(t, ErrInvalidTransition.Detail)
}

func TestAsAppErrorFollowsWrapChain(t *testing.T) {
	cause := stderrors.New("upstream reset")
	appErr := Wrap(cause, CodeGenerationFailed, "blueprint generation failed")
	wrapped := fmt.Errorf("select template: %w", appErr)

	require.True(t, IsAppError(wrapped))
	got := AsAppError(wrapped)
	assert.Equal(t, CodeGenerationFailed, got.Code)
	assert.True(t, got.Retryable())
	assert.True(t, HasCode(wrapped, CodeGenerationFailed))
	assert.ErrorIs(t, wrapped, cause)
}

func TestAsAppErrorUnknown(t *testing.T) {
	got := AsAppError(stderrors.New("plain"))
	assert.Equal(t, CodeUnknown, got.Code)
	assert.False(t, got.Retryable())
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("gateway: %w", ErrGenerationFailed.WithError(stderrors.New("timeout")))
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.NotErrorIs(t, err, ErrSessionBusy)
}
