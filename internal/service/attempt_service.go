package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptPublisher interface {
	PublishAttemptGraded(ctx context.Context, evt events.AttemptGraded) error
}

type AttemptService struct {
	DB          *gorm.DB
	AttemptRepo *repository.AttemptRepository
	UserRepo    *repository.UserRepository
	Exams       *ExamService
	Publisher   AttemptPublisher
	Now         func() time.Time
}

func NewAttemptService(
	db *gorm.DB,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
	exams *ExamService,
	publisher AttemptPublisher,
) *AttemptService {
	return &AttemptService{
		DB:          db,
		AttemptRepo: attemptRepo,
		UserRepo:    userRepo,
		Exams:       exams,
		Publisher:   publisher,
		Now:         time.Now,
	}
}

// SubmitRequest answers 的键为题目 id，值为选项 id
type SubmitRequest struct {
	Answers   map[uint]uint `json:"answers"`
	TimeTaken int           `json:"time_taken" binding:"gte=0"` // 秒
}

type AttemptView struct {
	ID           uint               `json:"id"`
	Exam         uint               `json:"exam"`
	ExamTitle    string             `json:"exam_title"`
	CourseTitle  string             `json:"course_title"`
	CourseSlug   string             `json:"course_slug"`
	Score        int                `json:"score"`
	EarnedPoints int                `json:"earned_points"`
	TimeTaken    int                `json:"time_taken"`
	IsPassed     bool               `json:"is_passed"`
	CompletedAt  time.Time          `json:"completed_at"`
	User         *model.UserSummary `json:"user,omitempty"`
}

func NewAttemptView(a *model.ExamAttempt) AttemptView {
	view := AttemptView{
		ID:           a.ID,
		Exam:         a.ExamID,
		Score:        a.Score,
		EarnedPoints: a.EarnedPoints,
		TimeTaken:    a.TimeTaken,
		IsPassed:     a.IsPassed,
		CompletedAt:  a.CompletedAt,
	}
	if a.Exam != nil {
		view.ExamTitle = a.Exam.Title
		if a.Exam.Course != nil {
			view.CourseTitle = a.Exam.Course.Title
			view.CourseSlug = a.Exam.Course.Slug
		}
	}
	if a.User != nil {
		summary := a.User.Summary()
		view.User = &summary
	}
	return view
}

// Submit 判分、写入记录、更新用户积分在同一个事务中完成，提交后发布事件
func (s *AttemptService) Submit(ctx context.Context, userID, examID uint, staff bool, req *SubmitRequest) (*model.ExamAttempt, error) {
	if req.TimeTaken < 0 {
		req.TimeTaken = 0
	}

	exam, err := s.Exams.Find(examID, staff)
	if err != nil {
		return nil, err
	}

	result, err := GradeSubmission(exam, req.Answers)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	attempt := &model.ExamAttempt{
		UserID:      userID,
		ExamID:      exam.ID,
		Score:       result.Score,
		TimeTaken:   req.TimeTaken,
		IsPassed:    result.IsPassed,
		Answers:     datatypes.JSON(snapshot),
		CompletedAt: s.Now(),
	}
	if result.IsPassed {
		attempt.EarnedPoints = result.EarnedPoints
	}

	var totalScore int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		user, err := users.FindByIDForUpdate(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}

		if err := s.AttemptRepo.WithTx(tx).Create(attempt); err != nil {
			return err
		}

		user.StudyTime += req.TimeTaken / 60
		user.TotalScore += attempt.EarnedPoints
		if err := users.UpdateProgress(user); err != nil {
			return err
		}
		totalScore = user.TotalScore
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveSubmission(attempt.IsPassed)

	if s.Publisher != nil {
		evt := events.AttemptGraded{
			AttemptID:    attempt.ID,
			UserID:       userID,
			ExamID:       exam.ID,
			Score:        attempt.Score,
			EarnedPoints: attempt.EarnedPoints,
			IsPassed:     attempt.IsPassed,
			TotalScore:   totalScore,
			CompletedAt:  attempt.CompletedAt,
		}
		if err := s.Publisher.PublishAttemptGraded(ctx, evt); err != nil {
			logger.Log.Error("Failed to publish attempt event", zap.Uint("attempt_id", attempt.ID), zap.Error(err))
		}
	}

	attempt.Exam = exam
	return attempt, nil
}

// Get 通过的记录公开可见，未通过的仅本人与管理员可见
func (s *AttemptService) Get(id, viewerID uint, staff bool) (*model.ExamAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if !attempt.IsPassed && attempt.UserID != viewerID && !staff {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptService) History(userID uint) ([]AttemptView, error) {
	attempts, err := s.AttemptRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, NewAttemptView(&attempts[i]))
	}
	return views, nil
}
