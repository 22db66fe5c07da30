package repository

import (
	"learnhub_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindByIDForUpdate 行锁读取，同一用户的并发交卷在此串行
func (r *UserRepository) FindByIDForUpdate(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// FindByLogin 用户名或邮箱登录，忽略大小写
func (r *UserRepository) FindByLogin(login string) (*model.User, error) {
	var user model.User
	login = strings.ToLower(strings.TrimSpace(login))
	err := r.DB.Where("LOWER(username) = ?", login).
		Or("LOWER(email) = ?", login).
		Order("id ASC").
		First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// UpdateProgress 只写积分相关列，BeforeSave 钩子会同步 level
func (r *UserRepository) UpdateProgress(user *model.User) error {
	user.Level = model.LevelForScore(user.TotalScore)
	return r.DB.Model(user).Select("total_score", "study_time", "level").Updates(user).Error
}

func (r *UserRepository) UpdateProfile(user *model.User) error {
	return r.DB.Model(user).Select("email", "avatar", "bio").Updates(user).Error
}

func (r *UserRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).
		Error
}

func (r *UserRepository) SetStaff(id uint, isStaff bool) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("is_staff", isStaff).
		Error
}

func (r *UserRepository) List(offset, limit int, search string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// FindTop 总积分排行，同分按 id 升序
func (r *UserRepository) FindTop(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("total_score DESC").Order("id ASC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Count(&count).Error
	return count, err
}

// CountAhead 排在该用户之前的人数
func (r *UserRepository) CountAhead(id uint, score int) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("total_score > ? OR (total_score = ? AND id < ?)", score, score, id).
		Count(&count).Error
	return count, err
}

type RankRow struct {
	ID         uint
	TotalScore int
	Rank       int
}

// RankRows 按名次顺序返回全部用户的积分与当前名次
func (r *UserRepository) RankRows() ([]RankRow, error) {
	var rows []RankRow
	err := r.DB.Model(&model.User{}).
		Select("id", "total_score", "rank").
		Order("total_score DESC").
		Order("id ASC").
		Scan(&rows).Error
	return rows, err
}

// UpdateRank 只写 rank 列，不触发 BeforeSave
func (r *UserRepository) UpdateRank(id uint, rank int) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("rank", rank).
		Error
}
