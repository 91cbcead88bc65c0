package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startDispatcher(t *testing.T) (*Dispatcher, context.CancelFunc) {
	t.Helper()
	d := NewDispatcher(16)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return d, cancel
}

func TestDispatcherPreservesOrder(t *testing.T) {
	d, _ := startDispatcher(t)
	ctx := context.Background()
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		if err := d.Submit(ctx, func() { got = append(got, i) }); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := d.Do(ctx, func() {}); err != nil {
		t.Fatalf("do: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
	if len(got) != 100 {
		t.Errorf("ran %d tasks", len(got))
	}
}

func TestDispatcherSurvivesPanic(t *testing.T) {
	d, _ := startDispatcher(t)
	ctx := context.Background()
	_ = d.Do(ctx, func() { panic("boom") })
	ran := false
	if err := d.Do(ctx, func() { ran = true }); err != nil {
		t.Fatalf("do after panic: %v", err)
	}
	if !ran {
		t.Errorf("dispatcher stopped after a panicking task")
	}
}

func TestDispatcherStopped(t *testing.T) {
	d, cancel := startDispatcher(t)
	cancel()
	<-d.done

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	// Fill the buffer so Submit cannot succeed by enqueueing.
	for i := 0; i < cap(d.tasks); i++ {
		d.tasks <- func() {}
	}
	if err := d.Submit(ctx, func() {}); !errors.Is(err, ErrDispatcherStopped) {
		t.Errorf("submit after stop err = %v", err)
	}
}
