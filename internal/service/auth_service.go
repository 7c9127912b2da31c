package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habitquest/internal/model"
	"habitquest/pkg/util"
)

type AuthService struct {
	users     UserStore
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		return nil, "", ErrValidation
	}
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if util.IsDuplicateKey(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := util.GenerateJWT(user.ID, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user.ID, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
