package service

import (
	"context"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fixture struct {
	t       *testing.T
	db      *gorm.DB
	users   *repository.UserRepository
	courses *repository.CourseRepository
	exams   *repository.ExamRepository
	attempt *repository.AttemptRepository
	certs   *repository.CertificateRepository

	rank      *RankService
	examSvc   *ExamService
	courseSvc *CourseService
	attempts  *AttemptService
	published *recordingPublisher
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AttemptGraded
}

func (p *recordingPublisher) PublishAttemptGraded(_ context.Context, evt events.AttemptGraded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

type countingScheduler struct {
	mu    sync.Mutex
	calls int
}

func (s *countingScheduler) Schedule(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenTestDB(t)

	f := &fixture{
		t:         t,
		db:        db,
		users:     repository.NewUserRepository(db),
		courses:   repository.NewCourseRepository(db),
		exams:     repository.NewExamRepository(db),
		attempt:   repository.NewAttemptRepository(db),
		certs:     repository.NewCertificateRepository(db),
		published: &recordingPublisher{},
	}
	f.rank = NewRankService(db, f.users, repository.NewDBRankIndex(f.users))
	f.examSvc = NewExamService(f.exams, f.courses)
	f.courseSvc = NewCourseService(f.courses, f.exams, f.attempt, f.users)
	f.attempts = NewAttemptService(db, f.attempt, f.users, f.examSvc, f.published)
	return f
}

func (f *fixture) user(name string, score int) *model.User {
	f.t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x", Role: model.Student, TotalScore: score}
	if err := f.users.Create(u); err != nil {
		f.t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func intPtr(v int) *int { return &v }

// exam 创建一门课程及其试卷，每道题第一个选项正确
func (f *fixture) exam(title string, points ...int) *model.Exam {
	f.t.Helper()
	course, err := f.courseSvc.CreateCourse(&CourseRequest{Title: title})
	if err != nil {
		f.t.Fatalf("create course: %v", err)
	}

	questions := make([]QuestionInput, 0, len(points))
	for _, p := range points {
		questions = append(questions, QuestionInput{
			Text:   "question",
			Points: intPtr(p),
			Choices: []ChoiceInput{
				{Text: "right", IsCorrect: true},
				{Text: "wrong"},
			},
		})
	}
	exam, err := f.examSvc.Create(&ExamRequest{Course: course.ID, Title: title + " exam", Questions: &questions})
	if err != nil {
		f.t.Fatalf("create exam: %v", err)
	}
	return exam
}

// answers 前 correct 道题答对，其余答错
func answers(exam *model.Exam, correct int) map[uint]uint {
	out := make(map[uint]uint, len(exam.Questions))
	for i, q := range exam.Questions {
		if i < correct {
			out[q.ID] = q.Choices[0].ID
		} else {
			out[q.ID] = q.Choices[1].ID
		}
	}
	return out
}

// attemptAt 直接写入一条已判分的记录
func (f *fixture) attemptAt(userID, examID uint, earned int, passed bool, at time.Time) *model.ExamAttempt {
	f.t.Helper()
	a := &model.ExamAttempt{
		UserID:       userID,
		ExamID:       examID,
		Score:        100,
		EarnedPoints: earned,
		IsPassed:     passed,
		Answers:      []byte("{}"),
		CompletedAt:  at,
	}
	if err := f.attempt.Create(a); err != nil {
		f.t.Fatalf("create attempt: %v", err)
	}
	return a
}
