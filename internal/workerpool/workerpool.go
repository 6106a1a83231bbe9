// Package workerpool is a small tomb-supervised fixed worker pool,
// adapted from the exchange skeleton's stray worker.go (originally
// declared under internal/ as package server, never wired to a
// matching internal/utils package it imported).
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction is one unit of work a pool worker executes.
type WorkerFunction func(t *tomb.Tomb, task any) error

// Pool is a fixed-size pool of goroutines pulling tasks off a shared
// channel, supervised by a tomb.Tomb.
type Pool struct {
	n     int
	tasks chan any
	work  WorkerFunction
}

// New returns a Pool sized to run up to size concurrent workers.
func New(size int) Pool {
	return Pool{
		tasks: make(chan any, taskChanSize),
		n:     size,
	}
}

// AddTask enqueues task for the next free worker.
func (p *Pool) AddTask(task any) {
	p.tasks <- task
}

// Setup spawns and maintains up to p.n concurrent workers under t until
// t starts dying.
func (p *Pool) Setup(t *tomb.Tomb, work WorkerFunction) {
	p.work = work

	log.Info().Int("activeWorkers", p.n).Msg("adding workers")
	activeWorkers := 0
	for {
		select {
		case <-t.Dying():
			return
		default:
			if activeWorkers < p.n {
				t.Go(func() error {
					err := p.worker(t)
					activeWorkers--
					return err
				})
				activeWorkers++
			}
		}
	}
}

func (p *Pool) worker(t *tomb.Tomb) error {
	log.Debug().Msg("worker starting")
	select {
	case <-t.Dying():
		return nil
	case task := <-p.tasks:
		if err := p.work(t, task); err != nil {
			log.Error().Err(err).Msg("worker exiting")
			return err
		}
	}
	return nil
}
