package events

import (
	"context"
	"encoding/json"
	"fmt"
	"learnhub_backend/pkg/logger"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

const TopicAttemptGraded = "exam.attempt.graded"

// AttemptGraded 交卷事务提交后发布
type AttemptGraded struct {
	AttemptID    uint      `json:"attempt_id"`
	UserID       uint      `json:"user_id"`
	ExamID       uint      `json:"exam_id"`
	Score        int       `json:"score"`
	EarnedPoints int       `json:"earned_points"`
	IsPassed     bool      `json:"is_passed"`
	TotalScore   int       `json:"total_score"`
	CompletedAt  time.Time `json:"completed_at"`
}

type AttemptGradedHandler func(ctx context.Context, evt AttemptGraded) error

// Bus 进程内事件总线，订阅者失败只记录日志
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *zap.Logger
	wg     sync.WaitGroup
}

func NewBus(log *zap.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger.NewWatermillAdapter(log))

	return &Bus{pubsub: pubsub, log: log.Named("events")}
}

func (b *Bus) PublishAttemptGraded(ctx context.Context, evt AttemptGraded) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", TopicAttemptGraded, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.pubsub.Publish(TopicAttemptGraded, msg)
}

// SubscribeAttemptGraded 每个订阅者独立接收全部事件，不保证与发布顺序一致
func (b *Bus) SubscribeAttemptGraded(ctx context.Context, name string, handler AttemptGradedHandler) error {
	messages, err := b.pubsub.Subscribe(ctx, TopicAttemptGraded)
	if err != nil {
		return err
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.dispatch(name, msg, handler)
		}
	}()
	return nil
}

func (b *Bus) dispatch(name string, msg *message.Message, handler AttemptGradedHandler) {
	defer msg.Ack()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Subscriber panicked", zap.String("subscriber", name), zap.Any("panic", r))
		}
	}()

	var evt AttemptGraded
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		b.log.Error("Malformed event", zap.String("subscriber", name), zap.Error(err))
		return
	}

	// 请求可能已经结束，订阅者不继承请求的取消信号
	ctx := context.WithoutCancel(msg.Context())
	if err := handler(ctx, evt); err != nil {
		b.log.Error("Subscriber failed",
			zap.String("subscriber", name),
			zap.Uint("attempt_id", evt.AttemptID),
			zap.Error(err),
		)
	}
}

// Close 关闭后等待订阅者处理完已接收的事件
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}
