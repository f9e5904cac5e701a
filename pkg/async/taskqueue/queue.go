package taskqueue

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"

	"github.com/vnykmshr/taskflow/pkg/async/task"
)

// Queue is an unbounded FIFO of jobs guarded by a mutex and a condition
// variable. It is owned by one worker but safe for use by any number of
// producers and thieves.
type Queue struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	jobs     *linkedlistqueue.Queue
	closed   bool
}

// New creates an open, empty queue.
func New() *Queue {
	q := &Queue{jobs: linkedlistqueue.New()}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends j to the tail and wakes one blocked consumer. The queue
// takes ownership of the callable; j is left empty. Push never fails, even
// after Close.
func (q *Queue) Push(j *task.Job) {
	q.mu.Lock()
	q.jobs.Enqueue(j.Move())
	q.mu.Unlock()

	q.nonEmpty.Signal()
}

// TryPush is Push without waiting for the lock. If the lock is held by
// someone else it returns false and j is left untouched.
func (q *Queue) TryPush(j *task.Job) bool {
	if !q.mu.TryLock() {
		return false
	}
	q.jobs.Enqueue(j.Move())
	q.mu.Unlock()

	q.nonEmpty.Signal()
	return true
}

// Pop removes the head, blocking while the queue is empty and open.
// It returns false only once the queue is closed and drained.
func (q *Queue) Pop() (*task.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.jobs.Empty() && !q.closed {
		q.nonEmpty.Wait()
	}

	return q.dequeueLocked()
}

// TryPop removes the head without blocking. It returns false if the lock
// is contended or the queue is currently empty, whether or not it is closed.
func (q *Queue) TryPop() (*task.Job, bool) {
	if !q.mu.TryLock() {
		return nil, false
	}
	defer q.mu.Unlock()

	return q.dequeueLocked()
}

// Close marks the queue as closed and wakes every blocked consumer.
// Queued jobs stay available until drained. Closing twice is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.nonEmpty.Broadcast()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs.Size()
}

func (q *Queue) dequeueLocked() (*task.Job, bool) {
	v, ok := q.jobs.Dequeue()
	if !ok {
		return nil, false
	}
	return v.(*task.Job), true
}
