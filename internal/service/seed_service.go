package service

import (
	"errors"
	"fmt"
	"io"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Catalog 课程目录种子文件
type Catalog struct {
	Courses []CatalogCourse `yaml:"courses"`
}

type CatalogCourse struct {
	Title             string          `yaml:"title"`
	Slug              string          `yaml:"slug"`
	Description       string          `yaml:"description"`
	Thumbnail         string          `yaml:"thumbnail"`
	Category          string          `yaml:"category"`
	Difficulty        string          `yaml:"difficulty"`
	InstructorName    string          `yaml:"instructor_name"`
	InstructorBio     string          `yaml:"instructor_bio"`
	EstimatedDuration string          `yaml:"estimated_duration"`
	VideoURL          string          `yaml:"video_url"`
	Lessons           []CatalogLesson `yaml:"lessons"`
	Exam              *CatalogExam    `yaml:"exam"`
}

type CatalogLesson struct {
	Title       string `yaml:"title"`
	Content     string `yaml:"content"`
	CodeSnippet string `yaml:"code_snippet"`
	VideoURL    string `yaml:"video_url"`
	Order       uint   `yaml:"order"`
}

type CatalogExam struct {
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	DurationMinutes *int              `yaml:"duration_minutes"`
	PassingScore    *int              `yaml:"passing_score"`
	Questions       []CatalogQuestion `yaml:"questions"`
}

type CatalogQuestion struct {
	Text    string          `yaml:"text"`
	Code    string          `yaml:"code"`
	Points  *int            `yaml:"points"`
	Choices []CatalogChoice `yaml:"choices"`
}

type CatalogChoice struct {
	Text      string `yaml:"text"`
	IsCorrect bool   `yaml:"is_correct"`
}

type SeedResult struct {
	Courses  int
	Replaced int
	Lessons  int
	Exams    int
}

type SeedService struct {
	CourseRepo *repository.CourseRepository
	Courses    *CourseService
	Exams      *ExamService
}

func NewSeedService(courseRepo *repository.CourseRepository, courses *CourseService, exams *ExamService) *SeedService {
	return &SeedService{
		CourseRepo: courseRepo,
		Courses:    courses,
		Exams:      exams,
	}
}

func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &catalog, nil
}

// Seed 同名课程会先删除再重新创建
func (s *SeedService) Seed(catalog *Catalog) (*SeedResult, error) {
	res := &SeedResult{}

	for _, c := range catalog.Courses {
		existing, err := s.CourseRepo.FindByTitle(c.Title)
		switch {
		case err == nil:
			if err := s.CourseRepo.Delete(existing.ID); err != nil {
				return res, err
			}
			res.Replaced++
			logger.Log.Info("Deleted existing course", zap.String("title", c.Title))
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return res, err
		}

		course, err := s.Courses.CreateCourse(&CourseRequest{
			Title:             c.Title,
			Slug:              c.Slug,
			Description:       c.Description,
			Thumbnail:         c.Thumbnail,
			Category:          c.Category,
			Difficulty:        c.Difficulty,
			InstructorName:    c.InstructorName,
			InstructorBio:     c.InstructorBio,
			EstimatedDuration: c.EstimatedDuration,
			VideoURL:          c.VideoURL,
		})
		if err != nil {
			return res, fmt.Errorf("course %q: %w", c.Title, err)
		}
		res.Courses++

		for i, l := range c.Lessons {
			order := l.Order
			if order == 0 {
				order = uint(i + 1)
			}
			_, err := s.Courses.CreateLesson(course.ID, &LessonRequest{
				Title:       l.Title,
				Content:     l.Content,
				CodeSnippet: l.CodeSnippet,
				VideoURL:    l.VideoURL,
				Order:       order,
			})
			if err != nil {
				return res, fmt.Errorf("lesson %q: %w", l.Title, err)
			}
			res.Lessons++
		}

		if c.Exam == nil {
			continue
		}
		questions := make([]QuestionInput, 0, len(c.Exam.Questions))
		for _, q := range c.Exam.Questions {
			in := QuestionInput{Text: q.Text, Code: q.Code, Points: q.Points}
			for _, ch := range q.Choices {
				in.Choices = append(in.Choices, ChoiceInput{Text: ch.Text, IsCorrect: ch.IsCorrect})
			}
			questions = append(questions, in)
		}
		_, err = s.Exams.Create(&ExamRequest{
			Course:          course.ID,
			Title:           c.Exam.Title,
			Description:     c.Exam.Description,
			DurationMinutes: c.Exam.DurationMinutes,
			PassingScore:    c.Exam.PassingScore,
			Questions:       &questions,
		})
		if err != nil {
			return res, fmt.Errorf("exam of %q: %w", c.Title, err)
		}
		res.Exams++
	}
	return res, nil
}
