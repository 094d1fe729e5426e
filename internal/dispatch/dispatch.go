// Package dispatch decouples job creation from job execution. The core
// exposes ExecuteJob as a plain function of (jobID, topic, maxDocuments);
// this package is the task runner that invokes it asynchronously.
package dispatch

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Task identifies one job execution request.
type Task struct {
	JobID        string
	Topic        string
	MaxDocuments int
}

// Dispatcher hands a task to a worker. Dispatch returns immediately; the
// caller observes progress only through the job store.
type Dispatcher interface {
	Dispatch(task Task)
}

// Executor is the workflow body a dispatched task invokes.
type Executor interface {
	ExecuteJob(ctx context.Context, jobID, topic string, maxDocuments int) bool
}

// InProcess runs dispatched tasks on goroutines, bounded by a weighted
// semaphore so a burst of submissions cannot start unbounded concurrent
// fetches.
type InProcess struct {
	executor   Executor
	sem        *semaphore.Weighted
	onFinished func(jobID string)
	wg         sync.WaitGroup
}

var _ Dispatcher = (*InProcess)(nil)

// NewInProcess creates a dispatcher running at most maxConcurrent
// executions at a time. onFinished, when non-nil, is invoked after each
// execution regardless of outcome.
func NewInProcess(executor Executor, maxConcurrent int64, onFinished func(jobID string)) *InProcess {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &InProcess{
		executor:   executor,
		sem:        semaphore.NewWeighted(maxConcurrent),
		onFinished: onFinished,
	}
}

// Dispatch schedules the task on a worker goroutine and returns
// immediately.
func (d *InProcess) Dispatch(task Task) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx := context.Background()
		if err := d.sem.Acquire(ctx, 1); err != nil {
			logrus.Errorf("Failed to acquire worker slot for job %s: %v", task.JobID, err)
			return
		}
		defer d.sem.Release(1)

		logrus.Debugf("Worker picked up job %s", task.JobID)
		d.executor.ExecuteJob(ctx, task.JobID, task.Topic, task.MaxDocuments)

		if d.onFinished != nil {
			d.onFinished(task.JobID)
		}
	}()
}

// Drain blocks until all tasks dispatched so far have finished. Used on
// shutdown.
func (d *InProcess) Drain() {
	d.wg.Wait()
}
