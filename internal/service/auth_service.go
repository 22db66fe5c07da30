package service

import (
	"errors"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"` // 用户名或邮箱
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (s *AuthService) Register(req *RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.UserRepo.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrUsernameTaken
	}
	registered, err := s.UserRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.Student,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login 支持用户名或邮箱登录
func (s *AuthService) Login(req *LoginRequest) (*TokenPair, error) {
	user, err := s.UserRepo.FindByLogin(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	if err := s.UserRepo.TouchLastLogin(user.ID, time.Now()); err != nil {
		logger.Log.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return s.issue(user)
}

// Refresh 用 refresh token 换新的 access token，权限从数据库重新读取
func (s *AuthService) Refresh(refresh string) (string, error) {
	claims, err := util.ParseJWT(refresh, s.Cfg.JWT.Secret, util.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.UserRepo.FindByID(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, util.TokenTypeAccess, s.Cfg.JWT.AccessExpire)
}

func (s *AuthService) issue(user *model.User) (*TokenPair, error) {
	access, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, util.TokenTypeAccess, s.Cfg.JWT.AccessExpire)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, util.TokenTypeRefresh, s.Cfg.JWT.RefreshExpire)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}
