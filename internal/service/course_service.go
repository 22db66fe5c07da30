package service

import (
	"errors"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo  *repository.CourseRepository
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
	UserRepo    *repository.UserRepository
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	examRepo *repository.ExamRepository,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
) *CourseService {
	return &CourseService{
		CourseRepo:  courseRepo,
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
		UserRepo:    userRepo,
	}
}

type CourseRequest struct {
	Title             string `json:"title" binding:"required,max=200"`
	Slug              string `json:"slug" binding:"omitempty,max=255"`
	Description       string `json:"description"`
	Thumbnail         string `json:"thumbnail" binding:"omitempty,url"`
	Category          string `json:"category" binding:"omitempty,max=100"`
	Difficulty        string `json:"difficulty" binding:"omitempty,difficulty"`
	InstructorName    string `json:"instructor_name" binding:"omitempty,max=100"`
	InstructorBio     string `json:"instructor_bio"`
	EstimatedDuration string `json:"estimated_duration" binding:"omitempty,max=50"`
	VideoURL          string `json:"video_url" binding:"omitempty,url"`
}

type LessonRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Content     string `json:"content"`
	CodeSnippet string `json:"code_snippet"`
	VideoURL    string `json:"video_url" binding:"omitempty,url"`
	Order       uint   `json:"order" binding:"required,gt=0"`
}

type CourseListItem struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	Description       string `json:"description"`
	Thumbnail         string `json:"thumbnail"`
	Category          string `json:"category"`
	Difficulty        string `json:"difficulty"`
	EstimatedDuration string `json:"estimated_duration"`
	LessonsCount      int    `json:"lessons_count"`
	CreatedAt         string `json:"created_at"`
}

type UserCourseStatus struct {
	IsPassed  bool  `json:"is_passed"`
	AttemptID *uint `json:"attempt_id,omitempty"`
	Score     *int  `json:"score,omitempty"`
}

type CourseDetail struct {
	model.Course
	ExamID     *uint             `json:"exam_id"`
	TotalXP    int               `json:"total_xp"`
	UserStatus *UserCourseStatus `json:"user_status"`
}

type LessonDetail struct {
	model.Lesson
	NextLessonID     *uint `json:"next_lesson_id"`
	PreviousLessonID *uint `json:"previous_lesson_id"`
}

func (s *CourseService) List(category, difficulty string) ([]CourseListItem, error) {
	courses, err := s.CourseRepo.List(category, difficulty)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := s.CourseRepo.LessonCounts(ids)
	if err != nil {
		return nil, err
	}

	items := make([]CourseListItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, CourseListItem{
			ID:                c.ID,
			Title:             c.Title,
			Slug:              c.Slug,
			Description:       c.Description,
			Thumbnail:         c.Thumbnail,
			Category:          c.Category,
			Difficulty:        c.Difficulty,
			EstimatedDuration: c.EstimatedDuration,
			LessonsCount:      counts[c.ID],
			CreatedAt:         c.CreatedAt.Format(util.TimeFormat),
		})
	}
	return items, nil
}

// Detail 课程详情；userID 为 0 表示游客，不返回 user_status
func (s *CourseService) Detail(slugValue string, userID uint) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindBySlug(slugValue)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: *course}

	exam, err := s.ExamRepo.FindByCourseID(course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if userID != 0 {
			detail.UserStatus = &UserCourseStatus{}
		}
		return detail, nil
	}
	if err != nil {
		return nil, err
	}
	detail.ExamID = &exam.ID
	detail.TotalXP = exam.TotalPoints()

	if userID != 0 {
		detail.UserStatus = &UserCourseStatus{}
		attempt, err := s.AttemptRepo.FindLatestPassed(userID, exam.ID)
		if err == nil {
			detail.UserStatus = &UserCourseStatus{IsPassed: true, AttemptID: &attempt.ID, Score: &attempt.Score}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return detail, nil
}

// Completers 通过该课程考试的用户
func (s *CourseService) Completers(slugValue string) ([]model.UserSummary, error) {
	course, err := s.CourseRepo.FindBySlug(slugValue)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	summaries := []model.UserSummary{}
	exam, err := s.ExamRepo.FindByCourseID(course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return summaries, nil
	}
	if err != nil {
		return nil, err
	}

	ids, err := s.AttemptRepo.CompleterIDs(exam.ID)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			summaries = append(summaries, u.Summary())
		}
	}
	return summaries, nil
}

func (s *CourseService) Lesson(id uint) (*LessonDetail, error) {
	lesson, err := s.CourseRepo.FindLesson(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	prev, next, err := s.CourseRepo.AdjacentLessons(lesson)
	if err != nil {
		return nil, err
	}
	return &LessonDetail{Lesson: *lesson, NextLessonID: next, PreviousLessonID: prev}, nil
}

// uniqueSlug 由标题或指定值生成 slug，冲突时追加数字后缀
func (s *CourseService) uniqueSlug(requested, title string, excludeID uint) (string, error) {
	base := slug.Make(strings.TrimSpace(requested))
	if base == "" {
		base = slug.Make(title)
	}
	if base == "" {
		base = "course"
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.CourseRepo.SlugExists(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func applyCourseRequest(course *model.Course, req *CourseRequest) {
	course.Title = strings.TrimSpace(req.Title)
	course.Description = req.Description
	course.Thumbnail = req.Thumbnail
	course.Category = req.Category
	course.Difficulty = req.Difficulty
	course.InstructorName = req.InstructorName
	course.InstructorBio = req.InstructorBio
	course.EstimatedDuration = req.EstimatedDuration
	course.VideoURL = req.VideoURL

	if course.Category == "" {
		course.Category = "Technology"
	}
	if course.Difficulty == "" {
		course.Difficulty = model.DifficultyBeginner
	}
	if course.InstructorName == "" {
		course.InstructorName = "Expert Instructor"
	}
	if course.EstimatedDuration == "" {
		course.EstimatedDuration = "10 hours"
	}
}

func (s *CourseService) CreateCourse(req *CourseRequest) (*model.Course, error) {
	course := &model.Course{}
	applyCourseRequest(course, req)

	var err error
	if course.Slug, err = s.uniqueSlug(req.Slug, req.Title, 0); err != nil {
		return nil, err
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *CourseService) ListCourses() ([]model.Course, error) {
	return s.CourseRepo.List("", "")
}

// UpdateCourse 未指定 slug 时保留原值
func (s *CourseService) UpdateCourse(id uint, req *CourseRequest) (*model.Course, error) {
	course, err := s.GetCourse(id)
	if err != nil {
		return nil, err
	}
	applyCourseRequest(course, req)

	if req.Slug != "" && slug.Make(req.Slug) != course.Slug {
		if course.Slug, err = s.uniqueSlug(req.Slug, req.Title, course.ID); err != nil {
			return nil, err
		}
	}
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(id uint) error {
	if _, err := s.GetCourse(id); err != nil {
		return err
	}
	return s.CourseRepo.Delete(id)
}

func (s *CourseService) ListLessons(courseID uint) ([]model.Lesson, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}
	return s.CourseRepo.ListLessons(courseID)
}

func applyLessonRequest(lesson *model.Lesson, req *LessonRequest) {
	lesson.Title = strings.TrimSpace(req.Title)
	lesson.Content = req.Content
	lesson.CodeSnippet = req.CodeSnippet
	lesson.VideoURL = req.VideoURL
	lesson.Order = req.Order
}

func (s *CourseService) CreateLesson(courseID uint, req *LessonRequest) (*model.Lesson, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}
	lesson := &model.Lesson{CourseID: courseID}
	applyLessonRequest(lesson, req)
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) GetLesson(id uint) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLesson(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	return lesson, err
}

func (s *CourseService) UpdateLesson(id uint, req *LessonRequest) (*model.Lesson, error) {
	lesson, err := s.GetLesson(id)
	if err != nil {
		return nil, err
	}
	applyLessonRequest(lesson, req)
	if err := s.CourseRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(id uint) error {
	if _, err := s.GetLesson(id); err != nil {
		return err
	}
	return s.CourseRepo.DeleteLesson(id)
}
