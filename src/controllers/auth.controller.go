package controllers

import (
	"log"
	"net/http"
	"taskflow/src/models"
	"taskflow/src/services"
	"taskflow/src/types"
	"taskflow/src/utils"

	"github.com/gin-gonic/gin"
)

func AuthRegister(ctx *gin.Context) (user *models.User, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	user, err = svc.Users.Register(ctx.Request.Context(), &body)
	if err != nil {
		status, err := StatusOf(err)
		return nil, status, err
	}
	return user, http.StatusCreated, nil
}

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	user, err := svc.Users.Authenticate(ctx.Request.Context(), &body)
	if err != nil {
		if services.KindOf(err) == services.KIND_UNAUTHORIZED {
			return nil, http.StatusUnauthorized, err
		}
		status, err := StatusOf(err)
		return nil, status, err
	}
	jwt, err := utils.GenerateJWT(user.Email, user.ID)
	if err != nil {
		log.Printf("Error signing token for user [%s]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, errInternal
	}
	return &jwt, http.StatusOK, nil
}

func AuthMe(ctx *gin.Context) (user *models.User, status int, err error) {
	user, err = svc.Users.Get(ctx.Request.Context(), CurrentUser(ctx))
	if err != nil {
		status, err := StatusOf(err)
		return nil, status, err
	}
	return user, http.StatusOK, nil
}
