package utils

import (
	"errors"
	"fmt"
	"taskflow/src/config"
	"taskflow/src/types"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateJWT issues an HS256 token whose subject is the user id.
func GenerateJWT(email string, userID string) (string, error) {
	cfg := config.Load()
	now := time.Now()
	claims := &types.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseJWT validates the signature and expiry and returns the subject.
func ParseJWT(raw string) (string, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(config.Load().JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !tkn.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

var orgRoleValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := types.ParseOrgRole(fl.Field().String())
	return err == nil
}

var projectRoleValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := types.ParseProjectRole(fl.Field().String())
	return err == nil
}

var projectStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := types.ParseProjectStatus(fl.Field().String())
	return err == nil
}

var priorityValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := types.ParsePriority(fl.Field().String())
	return err == nil
}

// RegisterValidators adds the enum tags used by request bodies.
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("orgrole", orgRoleValidatorFunc)
	v.RegisterValidation("projectrole", projectRoleValidatorFunc)
	v.RegisterValidation("projectstatus", projectStatusValidatorFunc)
	v.RegisterValidation("priority", priorityValidatorFunc)
}
