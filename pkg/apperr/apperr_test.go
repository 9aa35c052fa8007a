package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
)

func TestCodeAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{apperr.Invalid("op", "bad %s", "input"), apperr.EInvalid, http.StatusBadRequest},
		{apperr.NotFound("op", "item"), apperr.ENotFound, http.StatusNotFound},
		{apperr.Forbidden("op", "no"), apperr.EForbidden, http.StatusForbidden},
		{&apperr.Error{Code: apperr.EUnauthorized}, apperr.EUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), apperr.EInternal, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", apperr.NotFound("op", "item")), apperr.ENotFound, http.StatusNotFound},
		{&apperr.Error{Err: apperr.Invalid("inner", "x")}, apperr.EInvalid, http.StatusBadRequest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, apperr.Code(tc.err))
		assert.Equal(t, tc.status, apperr.HTTPStatus(tc.err))
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "An internal error has occurred.", apperr.Message(errors.New("db password leaked")))
	assert.Equal(t, "An internal error has occurred.", apperr.Message(apperr.Internal("op", errors.New("x"))))
	assert.Equal(t, "item not found", apperr.Message(apperr.NotFound("op", "item")))
}

func TestErrorString(t *testing.T) {
	e := &apperr.Error{Code: apperr.ETransport, Msg: "send failed", Err: errors.New("dial tcp")}
	assert.Equal(t, "send failed: dial tcp", e.Error())
	assert.Equal(t, "<conflict>", (&apperr.Error{Code: apperr.EConflict}).Error())
	assert.True(t, apperr.Is(e, apperr.ETransport))
}
