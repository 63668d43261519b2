package controllers

import (
	"errors"
	"log"
	"net/http"
	"taskflow/src/services"

	"github.com/gin-gonic/gin"
)

var svc *services.Services

func NewServices(s *services.Services) {
	svc = s
}

func GetServices() *services.Services {
	return svc
}

// ErrAccess is the single message for missing resources and for resources the
// caller cannot see, so the two are indistinguishable.
var ErrAccess = errors.New("not found or access denied")

var errInternal = errors.New("internal server error")

// StatusOf maps a service error to an HTTP status and the error shown to clients.
func StatusOf(err error) (int, error) {
	switch services.KindOf(err) {
	case services.KIND_NOT_FOUND, services.KIND_UNAUTHORIZED:
		return http.StatusNotFound, ErrAccess
	case services.KIND_FORBIDDEN:
		return http.StatusForbidden, err
	case services.KIND_CONFLICT:
		return http.StatusConflict, err
	case services.KIND_INVALID:
		return http.StatusBadRequest, err
	}
	log.Printf("[controllers] internal error: %s\n", err.Error())
	return http.StatusInternalServerError, errInternal
}

func CurrentUser(ctx *gin.Context) string {
	return ctx.GetString("id")
}
