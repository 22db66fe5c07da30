package model

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// swagger:model Course
type Course struct {
	BaseModel
	Title             string   `gorm:"size:200;not null" json:"title"`
	Slug              string   `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description       string   `gorm:"type:text" json:"description"`
	Thumbnail         string   `gorm:"size:255" json:"thumbnail"`
	Category          string   `gorm:"size:100;default:'Technology';index" json:"category"`
	Difficulty        string   `gorm:"size:20;default:'beginner';index" json:"difficulty"`
	InstructorName    string   `gorm:"size:100;default:'Expert Instructor'" json:"instructor_name"`
	InstructorBio     string   `gorm:"type:text" json:"instructor_bio"`
	EstimatedDuration string   `gorm:"size:50;default:'10 hours'" json:"estimated_duration"`
	VideoURL          string   `gorm:"size:255" json:"video_url"`
	Lessons           []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"course"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Content     string `gorm:"type:text" json:"content"` // Markdown
	CodeSnippet string `gorm:"type:text" json:"code_snippet"`
	VideoURL    string `gorm:"size:255" json:"video_url"`
	Order       uint   `gorm:"column:sort_order;not null;index" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}
