package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	Student UserRole = "student"
	Mentor  UserRole = "mentor"
	Admin   UserRole = "admin"
)

// XPPerLevel 每 1000 XP 升一级
const XPPerLevel = 1000

// swagger:model User
type User struct {
	BaseModel
	Username    string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:254;index" json:"email"`
	Password    string     `gorm:"size:100;not null" json:"-"`
	Avatar      string     `gorm:"size:255" json:"avatar"`
	Bio         string     `gorm:"size:500" json:"bio"`
	Role        UserRole   `gorm:"size:10;default:'student'" json:"role"`
	IsStaff     bool       `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool       `gorm:"default:false" json:"is_superuser"`
	TotalScore  int        `gorm:"default:0;index" json:"total_score"`
	Rank        int        `gorm:"default:0" json:"rank"`
	Level       int        `gorm:"default:1" json:"level"`
	StudyTime   int        `gorm:"default:0" json:"study_time"` // 分钟
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave 保存前根据总积分重新计算等级
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Level = LevelForScore(u.TotalScore)
	return nil
}

func LevelForScore(score int) int {
	if score < 0 {
		score = 0
	}
	return score/XPPerLevel + 1
}

// HasStaffAccess 管理端接口的访问条件
func (u *User) HasStaffAccess() bool {
	return u.IsStaff || u.IsSuperuser
}

// UserSummary 评论、证书等处展示的精简用户信息
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Level    int    `json:"level"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Level:    u.Level,
	}
}
