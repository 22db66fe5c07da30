package model

import "time"

// 通过的考试记录即证书，评论与点赞都挂在 attempt 上

// swagger:model CertificateComment
type CertificateComment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AttemptID uint      `gorm:"index;not null" json:"attempt"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (CertificateComment) TableName() string {
	return "certificate_comments"
}

type CertificateLike struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AttemptID uint      `gorm:"uniqueIndex:idx_like_attempt_user;not null" json:"attempt"`
	UserID    uint      `gorm:"uniqueIndex:idx_like_attempt_user;not null" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

func (CertificateLike) TableName() string {
	return "certificate_likes"
}
