package controller

import (
	"errors"
	"learnhub_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errorStatus = []struct {
	err     error
	status  int
	message string
}{
	{util.ErrUserNotFound, http.StatusNotFound, "用户不存在"},
	{util.ErrCourseNotFound, http.StatusNotFound, "课程不存在"},
	{util.ErrLessonNotFound, http.StatusNotFound, "课时不存在"},
	{util.ErrExamNotFound, http.StatusNotFound, "试卷不存在"},
	{util.ErrAttemptNotFound, http.StatusNotFound, "答题记录不存在"},
	{util.ErrCertificateNotFound, http.StatusNotFound, "证书不存在"},
	{util.ErrUsernameTaken, http.StatusConflict, "用户名已被占用"},
	{util.ErrEmailRegistered, http.StatusConflict, "该邮箱已被注册"},
	{util.ErrExamExists, http.StatusConflict, "该课程已有试卷"},
	{util.ErrInvalidCredentials, http.StatusUnauthorized, "用户名或密码错误"},
	{util.ErrInvalidToken, http.StatusUnauthorized, "令牌无效或已过期"},
	{util.ErrPermissionDenied, http.StatusForbidden, "没有权限"},
	{util.ErrInvalidExam, http.StatusBadRequest, "试卷数据不合法"},
	{util.ErrUnknownQuestion, http.StatusBadRequest, "答案包含不属于该试卷的题目"},
	{util.ErrInvalidPeriod, http.StatusBadRequest, "period 只能是 all、weekly 或 monthly"},
	{util.ErrEmptyComment, http.StatusBadRequest, "评论内容不能为空"},
	{util.ErrCommentTooLong, http.StatusBadRequest, "评论内容过长"},
}

// respondError 将业务错误映射为 HTTP 状态码，未知错误记日志并返回 500
func respondError(ctx *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			msg := e.message
			if e.status == http.StatusBadRequest && err != e.err {
				msg += ": " + err.Error()
			}
			util.Error(ctx, e.status, msg)
			return
		}
	}
	util.LogInternalError(ctx, err)
}

func currentUserID(ctx *gin.Context) uint {
	if user := util.GetUserFromContext(ctx); user != nil {
		return user.UserID
	}
	return 0
}

func isStaff(ctx *gin.Context) bool {
	user := util.GetUserFromContext(ctx)
	return user != nil && user.HasStaffAccess()
}
