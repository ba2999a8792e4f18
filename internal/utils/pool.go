// Package utils carries small shared infrastructure for the server binaries.
package utils

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunc processes one task. A returned error stops that worker.
type WorkerFunc = func(t *tomb.Tomb, task any) error

// WorkerPool is a fixed-size pool of tomb-supervised workers draining a
// shared task channel.
type WorkerPool struct {
	n     int
	tasks chan any
}

func NewWorkerPool(size int) WorkerPool {
	return WorkerPool{
		n:     size,
		tasks: make(chan any, taskChanSize),
	}
}

// AddTask queues a task for the pool. Blocks while the queue is full.
func (pool *WorkerPool) AddTask(task any) {
	pool.tasks <- task
}

// Setup launches the workers on the tomb and returns. Workers exit when the
// tomb dies or their work function fails.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunc) {
	for i := 0; i < pool.n; i++ {
		id := i
		t.Go(func() error {
			return pool.worker(t, id, work)
		})
	}
}

// Workers wait on tasks in the task channel and action them.
func (pool *WorkerPool) worker(t *tomb.Tomb, id int, work WorkerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("worker exiting")
				return err
			}
		}
	}
}
