package concurrent

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool. jobs with the same key always go to the same worker, so they are processed in the order
// they were added. jobs with different keys are processed concurrently.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueues  []chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	jobQueues := make([]chan T, numWorkers)
	for i := range jobQueues {
		jobQueues[i] = make(chan T, jobQueueSize)
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueues:  jobQueues,
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(id int, jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueues[id] {
		res := jobFunc(job)
		wp.results <- res
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, jobFunc)
	}
}

// Wait. wait until every worker is done, then close the results channel. call after Close.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(key string, job T) {
	wp.jobQueues[wp.workerOf(key)] <- job
}

func (wp *WorkerPool[T, G]) workerOf(key string) int {
	return int(xxhash.Sum64String(key) % uint64(wp.numWorkers))
}

// CollectResults. must be drained while jobs are added, the channel is only buffered up to jobQueueSize.
func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}

func (wp *WorkerPool[T, G]) Close() {
	for _, q := range wp.jobQueues {
		close(q)
	}
}
