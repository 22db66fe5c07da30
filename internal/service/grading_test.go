package service

import (
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"math/rand"
	"testing"
)

// buildExam 每题第一个选项为正确答案
func buildExam(passing int, points ...int) *model.Exam {
	exam := &model.Exam{PassingScore: passing}
	var choiceID uint = 100
	for i, p := range points {
		q := model.Question{ID: uint(i + 1), Points: p}
		for j := 0; j < 3; j++ {
			choiceID++
			q.Choices = append(q.Choices, model.Choice{ID: choiceID, QuestionID: q.ID, IsCorrect: j == 0})
		}
		exam.Questions = append(exam.Questions, q)
	}
	return exam
}

func correctAnswers(exam *model.Exam) map[uint]uint {
	answers := map[uint]uint{}
	for _, q := range exam.Questions {
		answers[q.ID] = q.Choices[0].ID
	}
	return answers
}

func TestGradeSubmission(t *testing.T) {
	exam := buildExam(60, 25, 75)

	tests := []struct {
		name       string
		answers    map[uint]uint
		wantScore  int
		wantEarned int
		wantPassed bool
	}{
		{"only heavy question correct", map[uint]uint{2: exam.Questions[1].Choices[0].ID}, 75, 75, true},
		{"only light question correct", map[uint]uint{1: exam.Questions[0].Choices[0].ID}, 25, 25, false},
		{"all correct", correctAnswers(exam), 100, 100, true},
		{"nothing answered", map[uint]uint{}, 0, 0, false},
		{"wrong choices", map[uint]uint{1: exam.Questions[0].Choices[1].ID, 2: exam.Questions[1].Choices[2].ID}, 0, 0, false},
		{"unknown choice id", map[uint]uint{1: 9999, 2: exam.Questions[1].Choices[0].ID}, 75, 75, true},
		{"choice of another question", map[uint]uint{1: exam.Questions[1].Choices[0].ID}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := GradeSubmission(exam, tt.answers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Score != tt.wantScore || res.EarnedPoints != tt.wantEarned || res.IsPassed != tt.wantPassed {
				t.Fatalf("got score=%d earned=%d passed=%v, want %d/%d/%v",
					res.Score, res.EarnedPoints, res.IsPassed, tt.wantScore, tt.wantEarned, tt.wantPassed)
			}
			if res.TotalPoints != 100 {
				t.Fatalf("total points %d", res.TotalPoints)
			}
		})
	}
}

func TestGradeSubmissionUnknownQuestion(t *testing.T) {
	exam := buildExam(60, 10)
	_, err := GradeSubmission(exam, map[uint]uint{42: 1})
	if !errors.Is(err, util.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestGradeSubmissionEmptyExamNeverPasses(t *testing.T) {
	for _, passing := range []int{0, 60, 100} {
		res, err := GradeSubmission(&model.Exam{PassingScore: passing}, map[uint]uint{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Score != 0 || res.IsPassed {
			t.Fatalf("passing=%d: score=%d passed=%v", passing, res.Score, res.IsPassed)
		}
	}
}

func TestGradeSubmissionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := rng.Intn(6) + 1
		points := make([]int, n)
		for j := range points {
			points[j] = rng.Intn(50)
		}
		exam := buildExam(rng.Intn(101), points...)

		answers := map[uint]uint{}
		for _, q := range exam.Questions {
			if rng.Intn(4) == 0 {
				continue
			}
			answers[q.ID] = q.Choices[rng.Intn(len(q.Choices))].ID
		}

		res, err := GradeSubmission(exam, answers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("score out of range: %d", res.Score)
		}
		if res.TotalPoints > 0 && (res.Score >= exam.PassingScore) != res.IsPassed {
			t.Fatalf("pass flag mismatch: score=%d passing=%d passed=%v", res.Score, exam.PassingScore, res.IsPassed)
		}

		full, _ := GradeSubmission(exam, correctAnswers(exam))
		if full.EarnedPoints != exam.TotalPoints() {
			t.Fatalf("all-correct earned %d, want %d", full.EarnedPoints, exam.TotalPoints())
		}
		if exam.TotalPoints() > 0 && full.Score != 100 {
			t.Fatalf("all-correct score %d", full.Score)
		}
	}
}
