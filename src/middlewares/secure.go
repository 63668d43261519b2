package middlewares

import (
	"taskflow/src/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SecureHeaders(ctx *gin.Context) {
	h := ctx.Writer.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	if config.IsProd() {
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
	}
	ctx.Next()
}

// RequestID echoes X-Request-ID or assigns a fresh one.
func RequestID(ctx *gin.Context) {
	id := ctx.Request.Header.Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	ctx.Set("request_id", id)
	ctx.Header("X-Request-ID", id)
	ctx.Next()
}
