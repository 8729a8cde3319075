// Package jobs очередь асинхронных пакетных покупок и хранилище их состояний.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/google/uuid"
)

var (
	ErrJobNotFound = errors.New("job not found")
	// ErrEmpty очередь пуста в течение всего времени ожидания.
	ErrEmpty = errors.New("queue is empty")
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job задание на пакетную покупку. Attempt увеличивается при каждой повторной постановке в очередь.
// Processed и Partial переносят между попытками уже обработанные элементы: повтор начинается с
// Items[Processed:], а Partial хранит результат предыдущих попыток в формате State.Result.
type Job struct {
	ID         string                 `json:"id"`
	UserID     int64                  `json:"userId"`
	Items      []service.PurchaseItem `json:"items"`
	Attempt    uint                   `json:"attempt"`
	Processed  int                    `json:"processed,omitempty"`
	Partial    json.RawMessage        `json:"partial,omitempty"`
	EnqueuedAt time.Time              `json:"enqueuedAt"`
}

// Remaining элементы, которые еще не обработаны ни одной попыткой.
func (j Job) Remaining() []service.PurchaseItem {
	if j.Processed >= len(j.Items) {
		return nil
	}
	return j.Items[j.Processed:]
}

func NewJob(userID int64, items []service.PurchaseItem) Job {
	return Job{
		ID:         uuid.NewString(),
		UserID:     userID,
		Items:      items,
		EnqueuedAt: time.Now().UTC(),
	}
}

// State состояние задания, видимое клиенту. Result совпадает с ответом синхронной пакетной покупки.
type State struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"userId"`
	Status    Status          `json:"status"`
	Attempt   uint            `json:"attempt"`
	Total     int             `json:"total"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func StateOf(job Job, status Status) State {
	return State{
		ID:        job.ID,
		UserID:    job.UserID,
		Status:    status,
		Attempt:   job.Attempt,
		Total:     len(job.Items),
		UpdatedAt: time.Now().UTC(),
	}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue ждет задание не дольше wait. Если заданий нет, возвращает ErrEmpty.
	Dequeue(ctx context.Context, wait time.Duration) (*Job, error)
	SaveState(ctx context.Context, state State) error
	GetState(ctx context.Context, id string) (*State, error)
}

// Submit сохраняет состояние queued и ставит задание в очередь.
func Submit(ctx context.Context, q Queue, job Job) (*State, error) {
	state := StateOf(job, StatusQueued)
	if err := q.SaveState(ctx, state); err != nil {
		return nil, err
	}
	if err := q.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	return &state, nil
}
