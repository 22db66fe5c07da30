package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

const progressionDays = 7

type DayScore struct {
	Name  string `json:"name"` // Mon, Tue ...
	Score int    `json:"score"`
}

type DashboardStats struct {
	TotalXP     int        `json:"total_xp"`
	Rank        int        `json:"rank"`
	Level       int        `json:"level"`
	ExamsTaken  int64      `json:"exams_taken"`
	StudyTime   int        `json:"study_time"`
	Progression []DayScore `json:"progression"`
}

type Overview struct {
	Courses     int64   `json:"courses"`
	Exams       int64   `json:"exams"`
	Users       int64   `json:"users"`
	Attempts    int64   `json:"attempts"`
	Attempts30d int64   `json:"attempts_30d"`
	PassRate30d float64 `json:"pass_rate_30d"` // 0-1
}

type StatsService struct {
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.AttemptRepository
	CourseRepo  *repository.CourseRepository
	ExamRepo    *repository.ExamRepository
	Rank        *RankService
	Now         func() time.Time
}

func NewStatsService(
	userRepo *repository.UserRepository,
	attemptRepo *repository.AttemptRepository,
	courseRepo *repository.CourseRepository,
	examRepo *repository.ExamRepository,
	rank *RankService,
) *StatsService {
	return &StatsService{
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		CourseRepo:  courseRepo,
		ExamRepo:    examRepo,
		Rank:        rank,
		Now:         time.Now,
	}
}

// Dashboard 个人统计，progression 为包含今天在内最近 7 天每天获得的积分
func (s *StatsService) Dashboard(ctx context.Context, userID uint) (*DashboardStats, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	taken, err := s.AttemptRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	first := today.AddDate(0, 0, -(progressionDays - 1))

	rows, err := s.AttemptRepo.EarnedSince(userID, first)
	if err != nil {
		return nil, err
	}

	progression := make([]DayScore, progressionDays)
	for i := range progression {
		progression[i].Name = first.AddDate(0, 0, i).Format("Mon")
	}
	for _, r := range rows {
		at := r.CompletedAt.In(now.Location())
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, now.Location())
		idx := int(day.Sub(first).Hours()+12) / 24
		if idx >= 0 && idx < progressionDays {
			progression[idx].Score += r.EarnedPoints
		}
	}

	return &DashboardStats{
		TotalXP:     user.TotalScore,
		Rank:        s.Rank.LiveRank(ctx, user),
		Level:       user.Level,
		ExamsTaken:  taken,
		StudyTime:   user.StudyTime,
		Progression: progression,
	}, nil
}

// Overview 管理端概览
func (s *StatsService) Overview() (*Overview, error) {
	var o Overview
	var err error

	if o.Courses, err = s.CourseRepo.Count(); err != nil {
		return nil, err
	}
	if o.Exams, err = s.ExamRepo.Count(); err != nil {
		return nil, err
	}
	if o.Users, err = s.UserRepo.Count(); err != nil {
		return nil, err
	}
	if o.Attempts, err = s.AttemptRepo.Count(); err != nil {
		return nil, err
	}

	total, passed, err := s.AttemptRepo.CountSince(s.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	o.Attempts30d = total
	if total > 0 {
		o.PassRate30d = float64(passed) / float64(total)
	}
	return &o, nil
}
