package service

import (
	"errors"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type ExamService struct {
	ExamRepo   *repository.ExamRepository
	CourseRepo *repository.CourseRepository
}

func NewExamService(examRepo *repository.ExamRepository, courseRepo *repository.CourseRepository) *ExamService {
	return &ExamService{
		ExamRepo:   examRepo,
		CourseRepo: courseRepo,
	}
}

type ChoiceInput struct {
	Text      string `json:"text" binding:"required,max=255"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text    string        `json:"text" binding:"required"`
	Code    string        `json:"code"`
	Points  *int          `json:"points" binding:"omitempty,gte=0"`
	Choices []ChoiceInput `json:"choices" binding:"required,min=1,dive"`
}

// ExamRequest 更新时 questions 缺省表示保留原题目，传入则整体替换
type ExamRequest struct {
	Course          uint             `json:"course" binding:"required"`
	Title           string           `json:"title" binding:"required,max=200"`
	Description     string           `json:"description"`
	DurationMinutes *int             `json:"duration_minutes" binding:"omitempty,gte=1"`
	PassingScore    *int             `json:"passing_score" binding:"omitempty,gte=0,lte=100"`
	IsActive        *bool            `json:"is_active"`
	Questions       *[]QuestionInput `json:"questions" binding:"omitempty,dive"`
}

// 考生视图不包含正确答案

type ChoiceView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Code    string       `json:"code"`
	Points  int          `json:"points"`
	Choices []ChoiceView `json:"choices"`
}

type ExamView struct {
	ID              uint           `json:"id"`
	Course          uint           `json:"course"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DurationMinutes int            `json:"duration_minutes"`
	PassingScore    int            `json:"passing_score"`
	Questions       []QuestionView `json:"questions"`
}

func NewExamView(exam *model.Exam) *ExamView {
	view := &ExamView{
		ID:              exam.ID,
		Course:          exam.CourseID,
		Title:           exam.Title,
		Description:     exam.Description,
		DurationMinutes: exam.DurationMinutes,
		PassingScore:    exam.PassingScore,
		Questions:       make([]QuestionView, 0, len(exam.Questions)),
	}
	for _, q := range exam.Questions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Code: q.Code, Points: q.Points, Choices: make([]ChoiceView, 0, len(q.Choices))}
		for _, ch := range q.Choices {
			qv.Choices = append(qv.Choices, ChoiceView{ID: ch.ID, Text: ch.Text})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

// Find 未启用的试卷对非管理员不可见
func (s *ExamService) Find(id uint, staff bool) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if !exam.IsActive && !staff {
		return nil, util.ErrExamNotFound
	}
	return exam, nil
}

func (s *ExamService) List() ([]model.Exam, error) {
	return s.ExamRepo.List()
}

// buildQuestions 校验每道题恰好一个正确选项
func buildQuestions(inputs []QuestionInput) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		correct := 0
		q := model.Question{
			Text:   strings.TrimSpace(in.Text),
			Code:   in.Code,
			Points: model.DefaultQuestionPoints,
		}
		if in.Points != nil {
			q.Points = *in.Points
		}
		for _, ch := range in.Choices {
			if ch.IsCorrect {
				correct++
			}
			q.Choices = append(q.Choices, model.Choice{Text: strings.TrimSpace(ch.Text), IsCorrect: ch.IsCorrect})
		}
		if correct != 1 {
			return nil, fmt.Errorf("question %d has %d correct choices: %w", i+1, correct, util.ErrInvalidExam)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *ExamService) checkCourse(courseID, examID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	exists, err := s.ExamRepo.ExistsForCourse(courseID, examID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrExamExists
	}
	return nil
}

func (s *ExamService) Create(req *ExamRequest) (*model.Exam, error) {
	var inputs []QuestionInput
	if req.Questions != nil {
		inputs = *req.Questions
	}
	questions, err := buildQuestions(inputs)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourse(req.Course, 0); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		CourseID:        req.Course,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		DurationMinutes: model.DefaultDurationMinutes,
		PassingScore:    model.DefaultPassingScore,
		IsActive:        true,
		Questions:       questions,
	}
	applyExamOptions(exam, req)

	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}
	return s.ExamRepo.FindByID(exam.ID)
}

func applyExamOptions(exam *model.Exam, req *ExamRequest) {
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
}

func (s *ExamService) Update(id uint, req *ExamRequest) (*model.Exam, error) {
	exam, err := s.Find(id, true)
	if err != nil {
		return nil, err
	}

	var questions []model.Question
	if req.Questions != nil {
		if questions, err = buildQuestions(*req.Questions); err != nil {
			return nil, err
		}
	}
	if req.Course != exam.CourseID {
		if err := s.checkCourse(req.Course, exam.ID); err != nil {
			return nil, err
		}
	}

	exam.CourseID = req.Course
	exam.Course = nil
	exam.Title = strings.TrimSpace(req.Title)
	exam.Description = req.Description
	applyExamOptions(exam, req)

	if err := s.ExamRepo.Update(exam, questions); err != nil {
		return nil, err
	}
	return s.ExamRepo.FindByID(exam.ID)
}

func (s *ExamService) Delete(id uint) error {
	if _, err := s.Find(id, true); err != nil {
		return err
	}
	return s.ExamRepo.Delete(id)
}
