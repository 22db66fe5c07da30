package service

import (
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// CertificateService 证书即通过的考试记录，评论与点赞只对它们开放
type CertificateService struct {
	CertRepo    *repository.CertificateRepository
	AttemptRepo *repository.AttemptRepository
}

func NewCertificateService(certRepo *repository.CertificateRepository, attemptRepo *repository.AttemptRepository) *CertificateService {
	return &CertificateService{
		CertRepo:    certRepo,
		AttemptRepo: attemptRepo,
	}
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentView struct {
	ID        uint              `json:"id"`
	Attempt   uint              `json:"attempt"`
	Text      string            `json:"text"`
	CreatedAt time.Time         `json:"created_at"`
	User      model.UserSummary `json:"user"`
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type CertificateSocial struct {
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
	Liked         bool  `json:"liked"`
}

func newCommentView(c *model.CertificateComment) CommentView {
	return CommentView{
		ID:        c.ID,
		Attempt:   c.AttemptID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		User:      c.User.Summary(),
	}
}

func (s *CertificateService) certificate(attemptID uint) (*model.ExamAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCertificateNotFound
	}
	if err != nil {
		return nil, err
	}
	if !attempt.IsPassed {
		return nil, util.ErrCertificateNotFound
	}
	return attempt, nil
}

func (s *CertificateService) ListComments(attemptID uint) ([]CommentView, error) {
	if _, err := s.certificate(attemptID); err != nil {
		return nil, err
	}
	comments, err := s.CertRepo.ListComments(attemptID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	return views, nil
}

func (s *CertificateService) AddComment(userID, attemptID uint, text string) (*CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > util.MaxCommentLength {
		return nil, util.ErrCommentTooLong
	}
	if _, err := s.certificate(attemptID); err != nil {
		return nil, err
	}

	comment := &model.CertificateComment{
		AttemptID: attemptID,
		UserID:    userID,
		Text:      text,
	}
	if err := s.CertRepo.CreateComment(comment); err != nil {
		return nil, err
	}
	view := newCommentView(comment)
	return &view, nil
}

// ToggleLike 同一用户重复调用在点赞与取消之间切换
func (s *CertificateService) ToggleLike(userID, attemptID uint) (*LikeResult, error) {
	if _, err := s.certificate(attemptID); err != nil {
		return nil, err
	}
	liked, err := s.CertRepo.ToggleLike(userID, attemptID)
	if err != nil {
		return nil, err
	}
	count, err := s.CertRepo.CountLikes(attemptID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikesCount: count}, nil
}

// Social 证书详情页的点赞、评论计数，viewerID 为 0 时 liked 恒为 false
func (s *CertificateService) Social(attemptID, viewerID uint) (*CertificateSocial, error) {
	likes, err := s.CertRepo.CountLikes(attemptID)
	if err != nil {
		return nil, err
	}
	comments, err := s.CertRepo.CountComments(attemptID)
	if err != nil {
		return nil, err
	}
	liked, err := s.CertRepo.HasLiked(viewerID, attemptID)
	if err != nil {
		return nil, err
	}
	return &CertificateSocial{LikesCount: likes, CommentsCount: comments, Liked: liked}, nil
}
