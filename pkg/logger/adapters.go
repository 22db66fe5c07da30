package logger

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// WatermillAdapter 将 watermill 日志输出到 zap
type WatermillAdapter struct {
	log *zap.Logger
}

func NewWatermillAdapter(log *zap.Logger) watermill.LoggerAdapter {
	return &WatermillAdapter{log: log.Named("events")}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, zapFields(fields)...)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, zapFields(fields)...)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, zapFields(fields)...)
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{log: a.log.With(zapFields(fields)...)}
}

func zapFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// AsynqAdapter 实现 asynq.Logger
type AsynqAdapter struct {
	log *zap.SugaredLogger
}

func NewAsynqAdapter(log *zap.Logger) *AsynqAdapter {
	return &AsynqAdapter{log: log.Named("jobs").Sugar()}
}

func (a *AsynqAdapter) Debug(args ...interface{}) { a.log.Debug(args...) }
func (a *AsynqAdapter) Info(args ...interface{})  { a.log.Info(args...) }
func (a *AsynqAdapter) Warn(args ...interface{})  { a.log.Warn(args...) }
func (a *AsynqAdapter) Error(args ...interface{}) { a.log.Error(args...) }

// Fatal 不退出进程，只记录日志，由调用方决定如何处理
func (a *AsynqAdapter) Fatal(args ...interface{}) {
	a.log.Error(fmt.Sprint(args...))
}
