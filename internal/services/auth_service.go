package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/internal/repository"
	appErr "github.com/codelens/engine/pkg/errors"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	// Demo creates a throwaway trial user and returns a signed token for it,
	// so the app is usable without registration.
	Demo(ctx context.Context) (string, *models.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hmacSecret []byte
	trialDays  int
}

func NewAuthService(userRepo repository.UserRepository, secret []byte, trialDays int) AuthService {
	if trialDays <= 0 {
		trialDays = 14
	}
	return &authService{userRepo: userRepo, hmacSecret: secret, trialDays: trialDays}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	var existing models.User
	if err := s.userRepo.GetByEmail(ctx, email, &existing); err == nil {
		return nil, appErr.New(appErr.CodeConflict, "email already registered")
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}

	expiry := time.Now().AddDate(0, 0, s.trialDays)
	user := &models.User{
		Email:          email,
		PasswordHash:   string(ph),
		Name:           name,
		Tier:           models.TierTrial,
		TrialExpiresAt: &expiry,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.userRepo.GetByEmail(ctx, email, &user); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}
	if user.PasswordHash == "" {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.signToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *authService) Demo(ctx context.Context) (string, *models.User, error) {
	expiry := time.Now().AddDate(0, 0, s.trialDays)
	id := uuid.NewString()[:8]
	user := &models.User{
		Email:          fmt.Sprintf("demo-%s@codelens.local", id),
		Name:           "Demo User",
		Tier:           models.TierTrial,
		TrialExpiresAt: &expiry,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) signToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"tier": user.Tier,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}
	return signed, nil
}
