package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWriteAttempts(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10)
	alice := f.user("alice", 0)
	bob := f.user("bob", 0)
	f.attemptAt(alice.ID, exam.ID, 10, true, time.Now())
	f.attemptAt(bob.ID, exam.ID, 0, false, time.Now())

	var buf bytes.Buffer
	if err := NewExportService(f.attempt).WriteAttempts(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(attemptSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != attemptHeader[0] {
		t.Fatalf("header = %v", rows[0])
	}

	users := map[string]bool{}
	for _, r := range rows[1:] {
		for _, cell := range r {
			if cell == "alice" || cell == "bob" {
				users[cell] = true
			}
		}
	}
	if !users["alice"] || !users["bob"] {
		t.Fatalf("exported rows missing users: %v", rows[1:])
	}
}
