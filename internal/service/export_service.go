package service

import (
	"fmt"
	"io"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

const (
	attemptSheet    = "Attempts"
	exportBatchSize = 500
)

var attemptHeader = []string{
	"Attempt ID", "User ID", "Username", "Course", "Exam",
	"Score", "Earned Points", "Time Taken (s)", "Passed", "Completed At",
}

type ExportService struct {
	AttemptRepo *repository.AttemptRepository
}

func NewExportService(attemptRepo *repository.AttemptRepository) *ExportService {
	return &ExportService{AttemptRepo: attemptRepo}
}

// WriteAttempts 以流式方式把全部考试记录写成 xlsx
func (s *ExportService) WriteAttempts(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attemptSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(attemptSheet)
	if err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(3, 5, 28); err != nil {
		return err
	}
	if err := sw.SetColWidth(10, 10, 20); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(attemptHeader))
	for _, h := range attemptHeader {
		header = append(header, excelize.Cell{StyleID: bold, Value: h})
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	row := 2
	err = s.AttemptRepo.FindInBatches(exportBatchSize, func(batch []model.ExamAttempt) error {
		for i := range batch {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := sw.SetRow(cell, attemptRow(&batch[i])); err != nil {
				return err
			}
			row++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("export attempts: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func attemptRow(a *model.ExamAttempt) []interface{} {
	var username, course, exam string
	if a.User != nil {
		username = a.User.Username
	}
	if a.Exam != nil {
		exam = a.Exam.Title
		if a.Exam.Course != nil {
			course = a.Exam.Course.Title
		}
	}
	passed := "no"
	if a.IsPassed {
		passed = "yes"
	}
	return []interface{}{
		a.ID, a.UserID, username, course, exam,
		a.Score, a.EarnedPoints, a.TimeTaken, passed,
		a.CompletedAt.Format(util.TimeFormat),
	}
}
