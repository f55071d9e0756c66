package pool

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
)

// Run executes fn over every task with a bounded number of workers and
// returns a channel delivering one result per task in completion order. The
// channel closes after the last result.
//
// Behavior:
//   - Every task is executed exactly once; there is no retry and no way to
//     abort submitted work early
//   - Panics inside fn are recovered, logged with a stack trace, and turned
//     into a result via onPanic so the task is still accounted for
//   - Results are buffered, so workers never block on a slow consumer
func Run[T, R any](ctx context.Context, workers int, tasks []T, fn func(ctx context.Context, task T) R, onPanic func(task T, recovered any) R) <-chan R {
	if workers < 1 {
		workers = 1
	}

	taskCh := make(chan T)
	resultCh := make(chan R, len(tasks))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				resultCh <- runOne(ctx, task, fn, onPanic)
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			taskCh <- task
		}
		close(taskCh)
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

func runOne[T, R any](ctx context.Context, task T, fn func(ctx context.Context, task T) R, onPanic func(task T, recovered any) R) (result R) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.From(ctx).Error("panic in pool task",
				"recover", r,
				"stack", string(debug.Stack()),
			)
			result = onPanic(task, r)
		}
	}()

	return fn(ctx, task)
}
