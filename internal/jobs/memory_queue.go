package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryQueue очередь в памяти процесса для запуска без redis. Задания теряются при перезапуске.
type MemoryQueue struct {
	mu     sync.Mutex
	ch     chan Job
	states map[string]State
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		ch:     make(chan Job, capacity),
		states: make(map[string]State),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue job %s: %w", job.ID, ctx.Err())
	default:
		return fmt.Errorf("enqueue job %s: queue is full", job.ID)
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case job := <-q.ch:
		return &job, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) SaveState(_ context.Context, state State) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.states[state.ID] = state
	return nil
}

func (q *MemoryQueue) GetState(_ context.Context, id string) (*State, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	state, ok := q.states[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrJobNotFound)
	}
	return &state, nil
}
