// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrRunnerClosed is returned by Submit after Close.
	ErrRunnerClosed = errors.New("job runner is closed")
	// ErrShutdown is passed to Job.Abandon for jobs that never started.
	ErrShutdown = errors.New("shutdown before the job started")
)

// Job is a unit of work executed by a JobRunner.
type Job struct {
	Run func(ctx context.Context)
	// Abandon, if set, is called instead of Run when the runner's context
	// is cancelled before the job starts.
	Abandon func(err error)
}

// JobRunner executes submitted jobs one at a time on a single worker
// goroutine, keeping at least interval between the start of consecutive
// jobs.
type JobRunner struct {
	interval  time.Duration
	workQueue chan Job
	wg        sync.WaitGroup
	ctx       context.Context

	mu     sync.Mutex
	closed bool
}

// NewJobRunner starts the worker. queueSize bounds the number of pending
// jobs; Submit blocks while the queue is full.
func NewJobRunner(ctx context.Context, interval time.Duration, queueSize int) *JobRunner {
	r := &JobRunner{
		interval:  interval,
		workQueue: make(chan Job, queueSize),
		ctx:       ctx,
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

func (r *JobRunner) worker() {
	defer r.wg.Done()

	var lastStart time.Time
	for {
		select {
		case job, ok := <-r.workQueue:
			if !ok {
				return
			}
			if r.ctx.Err() != nil {
				abandon(job)
				r.drain()
				return
			}
			if !lastStart.IsZero() {
				if wait := r.interval - time.Since(lastStart); wait > 0 {
					select {
					case <-time.After(wait):
					case <-r.ctx.Done():
						abandon(job)
						r.drain()
						return
					}
				}
			}
			lastStart = time.Now()
			job.Run(r.ctx)

		case <-r.ctx.Done():
			r.drain()
			return
		}
	}
}

// drain closes the queue and abandons every job still in it.
func (r *JobRunner) drain() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.workQueue)
	}
	r.mu.Unlock()

	for job := range r.workQueue {
		abandon(job)
	}
}

func abandon(job Job) {
	if job.Abandon != nil {
		job.Abandon(ErrShutdown)
	}
}

// Submit queues a job. It blocks while the queue is full and fails once the
// runner is closed or its context is cancelled.
func (r *JobRunner) Submit(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunnerClosed
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}
	select {
	case r.workQueue <- job:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

// Close stops accepting jobs and waits for the queued ones to finish. Jobs
// still queued when the context is cancelled are abandoned, not run.
func (r *JobRunner) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.workQueue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}
