package repository

import (
	"errors"
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}

func (r *CourseRepository) List(category, difficulty string) ([]model.Course, error) {
	var courses []model.Course

	query := r.DB.Model(&model.Course{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	err := query.Order("created_at DESC").Order("id DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Lessons", orderedLessons).
		Where("slug = ?", slug).
		First(&course).Error
	return &course, err
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Lessons", orderedLessons).First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByTitle(title string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("title = ?", title).First(&course).Error
	return &course, err
}

// SlugExists 包含已软删除的记录，唯一索引同样覆盖它们
func (r *CourseRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Unscoped().Model(&model.Course{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit(clause.Associations).Save(course).Error
}

// Delete 连同课时、考试及题目一起删除
func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var exam model.Exam
		err := tx.Where("course_id = ?", id).First(&exam).Error
		if err == nil {
			if err := deleteExamTree(tx, exam.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

func (r *CourseRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Count(&count).Error
	return count, err
}

// LessonCounts 各课程的课时数
func (r *CourseRepository) LessonCounts(courseIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uint
		Total    int
	}
	err := r.DB.Model(&model.Lesson{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}

func (r *CourseRepository) ListLessons(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := orderedLessons(r.DB.Where("course_id = ?", courseID)).Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) FindLesson(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CourseRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *CourseRepository) DeleteLesson(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

// AdjacentLessons 同一课程内按 order、id 排序的前后课时，不存在时为 nil
func (r *CourseRepository) AdjacentLessons(lesson *model.Lesson) (prev, next *uint, err error) {
	var ids []uint
	err = orderedLessons(r.DB.Model(&model.Lesson{}).Where("course_id = ?", lesson.CourseID)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, nil, err
	}
	for i, id := range ids {
		if id != lesson.ID {
			continue
		}
		if i > 0 {
			prev = &ids[i-1]
		}
		if i < len(ids)-1 {
			next = &ids[i+1]
		}
		break
	}
	return prev, next, nil
}
