package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) WithTx(tx *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: tx}
}

func withQuestions(db *gorm.DB) *gorm.DB {
	return db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// FindByID 加载题目与选项
func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := withQuestions(r.DB).Preload("Course").First(&exam, id).Error
	return &exam, err
}

func (r *ExamRepository) FindByCourseID(courseID uint) (*model.Exam, error) {
	var exam model.Exam
	err := withQuestions(r.DB).Where("course_id = ?", courseID).First(&exam).Error
	return &exam, err
}

func (r *ExamRepository) ExistsForCourse(courseID, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Exam{}).
		Where("course_id = ? AND id <> ?", courseID, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ExamRepository) List() ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Preload("Course").Order("id ASC").Find(&exams).Error
	return exams, err
}

// Create 题目与选项随试卷一起写入
func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

// Update 只更新试卷字段；questions 非 nil 时整体替换题目
func (r *ExamRepository) Update(exam *model.Exam, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(exam).Error; err != nil {
			return err
		}
		if questions == nil {
			return nil
		}
		if err := deleteQuestions(tx, exam.ID); err != nil {
			return err
		}
		for i := range questions {
			questions[i].ID = 0
			questions[i].ExamID = exam.ID
			for j := range questions[i].Choices {
				questions[i].Choices[j].ID = 0
			}
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		exam.Questions = questions
		return nil
	})
}

func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteExamTree(tx, id)
	})
}

func (r *ExamRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Exam{}).Count(&count).Error
	return count, err
}

func deleteQuestions(tx *gorm.DB, examID uint) error {
	questionIDs := tx.Model(&model.Question{}).Select("id").Where("exam_id = ?", examID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.Choice{}).Error; err != nil {
		return err
	}
	return tx.Where("exam_id = ?", examID).Delete(&model.Question{}).Error
}

// deleteExamTree 题目与选项物理删除，试卷软删除以保留历史成绩
func deleteExamTree(tx *gorm.DB, examID uint) error {
	if err := deleteQuestions(tx, examID); err != nil {
		return err
	}
	return tx.Delete(&model.Exam{}, examID).Error
}
