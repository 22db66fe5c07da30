package model

import (
	"time"

	"gorm.io/datatypes"
)

// ExamAttempt 一次交卷记录，写入后不再修改
// swagger:model ExamAttempt
type ExamAttempt struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint           `gorm:"index:idx_attempt_user_completed;not null" json:"user"`
	User         *User          `gorm:"foreignKey:UserID" json:"-"`
	ExamID       uint           `gorm:"index;not null" json:"exam"`
	Exam         *Exam          `gorm:"foreignKey:ExamID" json:"-"`
	Score        int            `gorm:"not null" json:"score"`
	EarnedPoints int            `gorm:"not null" json:"earned_points"`
	TimeTaken    int            `gorm:"not null" json:"time_taken"` // 秒
	IsPassed     bool           `gorm:"not null;index" json:"is_passed"`
	Answers      datatypes.JSON `json:"answers,omitempty" swaggertype:"object"`
	CompletedAt  time.Time      `gorm:"index:idx_attempt_user_completed;index" json:"completed_at"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}
