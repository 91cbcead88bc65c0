package app

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher runs every room mutation on one goroutine, in submission order.
// Handlers never run concurrently, so room state needs no locks.
type Dispatcher struct {
	tasks chan func()
	done  chan struct{}
}

func NewDispatcher(buffer int) *Dispatcher {
	return &Dispatcher{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run processes tasks until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	log.Info().Str("module", "app.dispatcher").Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.dispatcher").Msg("dispatcher stopped")
			return nil
		case fn := <-d.tasks:
			d.run(fn)
		}
	}
}

func (d *Dispatcher) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "app.dispatcher").Interface("panic", r).Bytes("stack", debug.Stack()).Msg("handler panicked")
		}
	}()
	fn()
}

// Submit enqueues fn without waiting for it to run.
func (d *Dispatcher) Submit(ctx context.Context, fn func()) error {
	select {
	case d.tasks <- fn:
		return nil
	case <-d.done:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the dispatcher and waits for it to finish.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := d.Submit(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-d.done:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
