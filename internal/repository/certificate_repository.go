package repository

import (
	"errors"
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) CreateComment(comment *model.CertificateComment) error {
	if err := r.DB.Omit("User").Create(comment).Error; err != nil {
		return err
	}
	return r.DB.First(&comment.User, comment.UserID).Error
}

// ListComments 最新的在前
func (r *CertificateRepository) ListComments(attemptID uint) ([]model.CertificateComment, error) {
	var comments []model.CertificateComment
	err := r.DB.Preload("User").
		Where("attempt_id = ?", attemptID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *CertificateRepository) CountLikes(attemptID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CertificateLike{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}

func (r *CertificateRepository) CountComments(attemptID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CertificateComment{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}

func (r *CertificateRepository) HasLiked(userID, attemptID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.Model(&model.CertificateLike{}).
		Where("user_id = ? AND attempt_id = ?", userID, attemptID).
		Count(&count).Error
	return count > 0, err
}

// ToggleLike 已点赞则取消，否则点赞；并发插入撞上唯一索引时视为已点赞
func (r *CertificateRepository) ToggleLike(userID, attemptID uint) (bool, error) {
	liked := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND attempt_id = ?", userID, attemptID).Delete(&model.CertificateLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// 嵌套事务使用 savepoint，唯一索引冲突不会中止外层事务
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&model.CertificateLike{UserID: userID, AttemptID: attemptID}).Error
		})
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}
