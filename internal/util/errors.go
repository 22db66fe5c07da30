package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrExamNotFound        = errors.New("exam not found")
	ErrExamExists          = errors.New("course already has an exam")
	ErrInvalidExam         = errors.New("each question needs exactly one correct choice")
	ErrUnknownQuestion     = errors.New("answer references a question outside this exam")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrInvalidPeriod       = errors.New("period must be one of all, weekly, monthly")
	ErrCommentTooLong      = errors.New("comment exceeds 1000 characters")
	ErrEmptyComment        = errors.New("comment text is required")
)
