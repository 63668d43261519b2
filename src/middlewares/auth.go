package middlewares

import (
	"log"
	"net/http"
	"strings"
	"taskflow/src/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts a Bearer token and stores its subject under "id".
// No other claim is consulted.
func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
	reqToken = strings.TrimSpace(reqToken)
	if !ok || reqToken == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	sub, err := utils.ParseJWT(reqToken)
	if err != nil {
		log.Printf("[auth] token error: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	ctx.Set("id", sub)
	ctx.Next()
}
