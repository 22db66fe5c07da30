package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserService 处理用户资料与后台用户管理
type UserService struct {
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.AttemptRepository
	Rank        *RankService
}

func NewUserService(userRepo *repository.UserRepository, attemptRepo *repository.AttemptRepository, rank *RankService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		Rank:        rank,
	}
}

// UpdateProfileRequest 积分、名次、角色等字段只读
type UpdateProfileRequest struct {
	Email  *string `json:"email" binding:"omitempty,email"`
	Avatar *string `json:"avatar" binding:"omitempty,url|eq="`
	Bio    *string `json:"bio" binding:"omitempty,max=500"`
}

type PublicProfile struct {
	ID           uint          `json:"id"`
	Username     string        `json:"username"`
	Avatar       string        `json:"avatar"`
	Bio          string        `json:"bio"`
	TotalScore   int           `json:"total_score"`
	Rank         int           `json:"rank"`
	Level        int           `json:"level"`
	DateJoined   time.Time     `json:"date_joined"`
	Certificates []AttemptView `json:"certificates"`
}

func (s *UserService) find(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// Me 当前用户资料，rank 取实时名次
func (s *UserService) Me(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}
	user.Rank = s.Rank.LiveRank(ctx, user)
	return user, nil
}

func (s *UserService) UpdateMe(ctx context.Context, id uint, req *UpdateProfileRequest) (*model.User, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			registered, err := s.UserRepo.ExistsByEmail(email)
			if err != nil {
				return nil, err
			}
			if registered {
				return nil, util.ErrEmailRegistered
			}
			user.Email = email
		}
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.UserRepo.UpdateProfile(user); err != nil {
		return nil, err
	}
	user.Rank = s.Rank.LiveRank(ctx, user)
	return user, nil
}

// PublicProfile 公开资料与全部证书，最新的在前
func (s *UserService) PublicProfile(ctx context.Context, id uint) (*PublicProfile, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListPassedByUser(id)
	if err != nil {
		return nil, err
	}
	certificates := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		certificates = append(certificates, NewAttemptView(&attempts[i]))
	}

	return &PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		Avatar:       user.Avatar,
		Bio:          user.Bio,
		TotalScore:   user.TotalScore,
		Rank:         s.Rank.LiveRank(ctx, user),
		Level:        user.Level,
		DateJoined:   user.CreatedAt,
		Certificates: certificates,
	}, nil
}

func (s *UserService) List(page, limit int, search string) (*util.PageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	users, total, err := s.UserRepo.List((page-1)*limit, limit, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	return &util.PageResponse{List: users, Total: total, Page: page, Limit: limit}, nil
}

// ToggleStaff 只有超级管理员可以切换他人的 staff 身份
func (s *UserService) ToggleStaff(actorIsSuperuser bool, id uint) (*model.User, error) {
	if !actorIsSuperuser {
		return nil, util.ErrPermissionDenied
	}
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}
	user.IsStaff = !user.IsStaff
	if err := s.UserRepo.SetStaff(user.ID, user.IsStaff); err != nil {
		return nil, err
	}
	return user, nil
}
