/*
Package taskqueue provides the per-worker job queue used by the scheduler.

A Queue supports blocking and non-blocking variants of both ends:

	q := taskqueue.New()
	q.Push(task.NewJob(work))       // always succeeds
	ok := q.TryPush(task.NewJob(w)) // false if the lock is contended

	job, ok := q.Pop()    // blocks until a job arrives or the queue is done
	job, ok = q.TryPop()  // never blocks

Close is permanent. A closed queue keeps handing out the jobs it still
holds; Pop reports false only when the queue is both closed and empty.
There is no capacity limit.

No operation ever holds more than this queue's own lock.
*/
package taskqueue
