package model

import "time"

const (
	DefaultPassingScore    = 60
	DefaultDurationMinutes = 30
	DefaultQuestionPoints  = 10
)

// 0 分及格线、0 分题目、未启用都是合法值，默认值由 service 层填充
// swagger:model Exam
type Exam struct {
	BaseModel
	CourseID        uint       `gorm:"index;not null" json:"course"`
	Course          *Course    `gorm:"foreignKey:CourseID" json:"-"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	DurationMinutes int        `gorm:"default:30" json:"duration_minutes"`
	PassingScore    int        `gorm:"not null" json:"passing_score"`
	IsActive        bool       `gorm:"not null" json:"is_active"`
	Questions       []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// TotalPoints 全部题目分值之和
func (e *Exam) TotalPoints() int {
	total := 0
	for _, q := range e.Questions {
		total += q.Points
	}
	return total
}

// Question 与 Choice 随试卷整体替换，不做软删除
// swagger:model Question
type Question struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	ExamID    uint      `gorm:"index;not null" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Code      string    `gorm:"type:text" json:"code"`
	Points    int       `gorm:"not null" json:"points"`
	Choices   []Choice  `gorm:"foreignKey:QuestionID" json:"choices"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"index;not null" json:"-"`
	Text       string `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"is_correct"`
}

func (Choice) TableName() string {
	return "choices"
}
