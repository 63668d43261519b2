package main

import (
	"net/http"
	"taskflow/src/controllers"
	"taskflow/src/services"
	"taskflow/src/types"

	"github.com/gin-gonic/gin"
)

func svc() *services.Services {
	return controllers.GetServices()
}

func abortWithServiceError(ctx *gin.Context, err error) {
	status, err := controllers.StatusOf(err)
	ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func bindID(ctx *gin.Context) (uint, bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return params.ID, true
}

func bindMember(ctx *gin.Context) (*types.MemberRequestParams, bool) {
	var params types.MemberRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &params, true
}

func bindJSON(ctx *gin.Context, body any) bool {
	if err := ctx.ShouldBindJSON(body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
