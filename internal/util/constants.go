package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 排行榜周期
const (
	PeriodAll     = "all"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

var Periods = []string{PeriodAll, PeriodWeekly, PeriodMonthly}

// gin 上下文键
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const MaxCommentLength = 1000
