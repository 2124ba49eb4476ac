package task

import (
	"context"
	"sync"
	"time"
)

// JobFunc is a unit of periodic work.
type JobFunc func(context.Context)

// Scheduler runs a JobFunc on a fixed interval. RunNow forces an immediate
// pass without disturbing the cadence. Start and Stop are idempotent.
type Scheduler struct {
	interval     time.Duration
	job          JobFunc
	wakeup       chan struct{}
	controlMutex sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewScheduler builds a Scheduler. Non-positive intervals fall back to one
// minute.
func NewScheduler(interval time.Duration, job JobFunc) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		job:      job,
		wakeup:   make(chan struct{}, 1),
	}
}

// Start launches the scheduler loop. A second Start on a running scheduler is
// a no-op.
func (scheduler *Scheduler) Start(ctx context.Context) {
	if scheduler == nil || scheduler.job == nil {
		return
	}
	scheduler.controlMutex.Lock()
	if scheduler.cancel != nil {
		scheduler.controlMutex.Unlock()
		return
	}
	runtimeCtx, cancel := context.WithCancel(ctx)
	scheduler.cancel = cancel
	done := make(chan struct{})
	scheduler.done = done
	scheduler.controlMutex.Unlock()

	go scheduler.loop(runtimeCtx, done)
}

// RunNow requests an immediate pass. Requests arriving while a pass is queued
// coalesce into one.
func (scheduler *Scheduler) RunNow() {
	if scheduler == nil {
		return
	}
	select {
	case scheduler.wakeup <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for the in-flight pass to finish.
func (scheduler *Scheduler) Stop() {
	if scheduler == nil {
		return
	}
	scheduler.controlMutex.Lock()
	cancel := scheduler.cancel
	done := scheduler.done
	scheduler.cancel = nil
	scheduler.done = nil
	scheduler.controlMutex.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (scheduler *Scheduler) loop(ctx context.Context, done chan struct{}) {
	timer := time.NewTimer(scheduler.interval)
	defer func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}()
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduler.wakeup:
			scheduler.job(ctx)
		case <-timer.C:
			scheduler.job(ctx)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(scheduler.interval)
	}
}
