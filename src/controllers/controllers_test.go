package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"taskflow/src/services"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
		opaque bool
	}{
		{services.NotFound("project"), http.StatusNotFound, true},
		{services.ErrUnauthorized, http.StatusNotFound, true},
		{services.ErrForbidden, http.StatusForbidden, false},
		{services.Conflict("status %d is in use", 3), http.StatusConflict, false},
		{services.Invalid("bad color"), http.StatusBadRequest, false},
		{fmt.Errorf("saving: %w", services.Invalid("bad color")), http.StatusBadRequest, false},
		{errors.New("connection reset"), http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		status, err := StatusOf(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		if tc.opaque {
			assert.Equal(t, ErrAccess, err)
		}
	}

	_, err := StatusOf(errors.New("connection reset"))
	assert.NotContains(t, err.Error(), "connection")
}
