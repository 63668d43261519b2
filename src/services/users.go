package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"taskflow/src/models"
	"taskflow/src/types"
	"taskflow/src/utils"
	"time"

	"github.com/google/uuid"
)

type UserService struct {
	store Store
	now   func() time.Time
}

var errBadCredentials = newError(KIND_UNAUTHORIZED, "invalid email or password")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, body *types.RegisterUserRequestBody) (*models.User, error) {
	email := normalizeEmail(body.Email)
	if len(body.Password) < 8 {
		return nil, Invalid("password must be at least 8 characters")
	}
	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, Conflict("email %s is already registered", email)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(body.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, err
	}
	log.Printf("[users] Registered %s\n", user.ID)
	return &user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, body *types.LoginRequestBody) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(body.Email))
	if errors.Is(err, ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, body.Password) {
		return nil, errBadCredentials
	}
	now := s.now()
	user.LastActive = &now
	if err := s.store.SaveUser(ctx, user); err != nil {
		log.Printf("[users] Could not update last_active for %s: %s\n", user.ID, err.Error())
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}
