package service

import (
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

// GradeResult 判分结果
type GradeResult struct {
	TotalPoints  int
	EarnedPoints int
	Score        int // 0-100
	IsPassed     bool
	Correct      map[uint]bool
}

// GradeSubmission 按题目分值判分。answers 为 题目 id -> 选项 id；
// 不属于该试卷的题目返回 ErrUnknownQuestion，不存在或不属于该题的选项记 0 分。
func GradeSubmission(exam *model.Exam, answers map[uint]uint) (GradeResult, error) {
	questions := make(map[uint]*model.Question, len(exam.Questions))
	for i := range exam.Questions {
		questions[exam.Questions[i].ID] = &exam.Questions[i]
	}
	for qid := range answers {
		if _, ok := questions[qid]; !ok {
			return GradeResult{}, fmt.Errorf("question %d: %w", qid, util.ErrUnknownQuestion)
		}
	}

	res := GradeResult{Correct: make(map[uint]bool, len(exam.Questions))}
	for _, q := range exam.Questions {
		res.TotalPoints += q.Points

		choiceID, answered := answers[q.ID]
		if !answered {
			continue
		}
		for _, ch := range q.Choices {
			if ch.ID == choiceID && ch.IsCorrect {
				res.EarnedPoints += q.Points
				res.Correct[q.ID] = true
				break
			}
		}
	}

	if res.TotalPoints > 0 {
		res.Score = res.EarnedPoints * 100 / res.TotalPoints
	}
	res.IsPassed = res.TotalPoints > 0 && res.Score >= exam.PassingScore
	return res, nil
}
