package events

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBusFansOutToEverySubscriber(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ctx := context.Background()

	var mu sync.Mutex
	got := map[string][]uint{}
	var wg sync.WaitGroup
	wg.Add(4)

	record := func(name string, fail bool) AttemptGradedHandler {
		return func(_ context.Context, evt AttemptGraded) error {
			defer wg.Done()
			mu.Lock()
			got[name] = append(got[name], evt.AttemptID)
			mu.Unlock()
			if fail {
				return errors.New("boom")
			}
			return nil
		}
	}

	if err := bus.SubscribeAttemptGraded(ctx, "rank", record("rank", false)); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bus.SubscribeAttemptGraded(ctx, "cache", record("cache", true)); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	for _, id := range []uint{1, 2} {
		if err := bus.PublishAttemptGraded(ctx, AttemptGraded{AttemptID: id, IsPassed: true}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("subscribers did not receive events in time")
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, name := range []string{"rank", "cache"} {
		ids := got[name]
		slices.Sort(ids)
		if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
			t.Fatalf("%s received %v", name, ids)
		}
	}
}
