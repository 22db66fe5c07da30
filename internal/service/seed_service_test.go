package service

import (
	"strings"
	"testing"
)

const testCatalog = `
courses:
  - title: Go Basics
    difficulty: beginner
    lessons:
      - title: Variables
        order: 1
      - title: Functions
    exam:
      title: Go Basics Exam
      passing_score: 50
      questions:
        - text: Keyword for goroutines?
          points: 20
          choices:
            - text: go
              is_correct: true
            - text: async
`

func TestSeedCatalog(t *testing.T) {
	f := newFixture(t)
	seeder := NewSeedService(f.courses, f.courseSvc, f.examSvc)

	catalog, err := LoadCatalog(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	res, err := seeder.Seed(catalog)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Courses != 1 || res.Lessons != 2 || res.Exams != 1 || res.Replaced != 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	detail, err := f.courseSvc.Detail("go-basics", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Lessons) != 2 || detail.Lessons[1].Order != 2 || detail.TotalXP != 20 {
		t.Fatalf("unexpected course detail %+v", detail)
	}

	// 重复导入替换旧课程
	res, err = seeder.Seed(catalog)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if res.Replaced != 1 {
		t.Fatalf("replaced = %d, want 1", res.Replaced)
	}
	count, _ := f.courses.Count()
	if count != 1 {
		t.Fatalf("course count = %d after reseed", count)
	}
}

func TestLoadCatalogRejectsUnknownFields(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("courses:\n  - title: x\n    tutor: y\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}
