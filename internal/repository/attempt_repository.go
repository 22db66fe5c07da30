package repository

import (
	"learnhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func withExamCourse(db *gorm.DB) *gorm.DB {
	return db.Preload("Exam", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	}).Preload("Exam.Course", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

func (r *AttemptRepository) Create(attempt *model.ExamAttempt) error {
	return r.DB.Omit("User", "Exam").Create(attempt).Error
}

// FindByID 预加载用户与试卷，已删除的试卷同样可见
func (r *AttemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := withExamCourse(r.DB).Preload("User").First(&attempt, id).Error
	return &attempt, err
}

// ListByUser 最新的在前
func (r *AttemptRepository) ListByUser(userID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := withExamCourse(r.DB).
		Where("user_id = ?", userID).
		Order("completed_at DESC").Order("id DESC").
		Find(&attempts).Error
	return attempts, err
}

// ListPassedByUser 用户的全部证书
func (r *AttemptRepository) ListPassedByUser(userID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := withExamCourse(r.DB).
		Where("user_id = ? AND is_passed = ?", userID, true).
		Order("completed_at DESC").Order("id DESC").
		Find(&attempts).Error
	return attempts, err
}

// FindLatestPassed 用户在该试卷上最近一次通过的记录
func (r *AttemptRepository) FindLatestPassed(userID, examID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Where("user_id = ? AND exam_id = ? AND is_passed = ?", userID, examID, true).
		Order("completed_at DESC").Order("id DESC").
		First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).Count(&count).Error
	return count, err
}

// CountSince 返回时间点之后的交卷总数与通过数
func (r *AttemptRepository) CountSince(since time.Time) (total, passed int64, err error) {
	err = r.DB.Model(&model.ExamAttempt{}).Where("completed_at >= ?", since).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.DB.Model(&model.ExamAttempt{}).
		Where("completed_at >= ? AND is_passed = ?", since, true).
		Count(&passed).Error
	return total, passed, err
}

type PeriodScore struct {
	UserID uint
	Points int
}

// SumEarnedSince 时间窗口内各用户获得的积分，按积分降序、用户 id 升序
func (r *AttemptRepository) SumEarnedSince(since time.Time, limit int) ([]PeriodScore, error) {
	var rows []PeriodScore
	err := r.DB.Model(&model.ExamAttempt{}).
		Select("user_id, SUM(earned_points) AS points").
		Where("completed_at >= ?", since).
		Group("user_id").
		Having("SUM(earned_points) > ?", 0).
		Order("points DESC").Order("user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

type ScoredAt struct {
	CompletedAt  time.Time
	EarnedPoints int
}

// EarnedSince 用户在时间点之后每次交卷获得的积分
func (r *AttemptRepository) EarnedSince(userID uint, since time.Time) ([]ScoredAt, error) {
	var rows []ScoredAt
	err := r.DB.Model(&model.ExamAttempt{}).
		Select("completed_at", "earned_points").
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Order("completed_at ASC").
		Scan(&rows).Error
	return rows, err
}

// CompleterIDs 通过指定试卷的用户，按首次通过时间排序
func (r *AttemptRepository) CompleterIDs(examID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ExamAttempt{}).
		Select("user_id").
		Where("exam_id = ? AND is_passed = ?", examID, true).
		Group("user_id").
		Order("MIN(completed_at) ASC").Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// FindInBatches 导出时分批读取，避免一次加载全部记录
func (r *AttemptRepository) FindInBatches(batchSize int, fn func([]model.ExamAttempt) error) error {
	var batch []model.ExamAttempt
	return withExamCourse(r.DB).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	}).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}
