package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultQueueKey = "billing:jobs:batch_purchase"
	DefaultStateTTL = 24 * time.Hour

	stateKeyPrefix = "billing:jobs:state:"
)

// RedisQueue очередь на списке redis (LPUSH/BRPOP) и состояния заданий в отдельных ключах с TTL.
type RedisQueue struct {
	rdb      redis.UniversalClient
	queueKey string
	stateTTL time.Duration
}

func NewRedisQueue(rdb redis.UniversalClient) *RedisQueue {
	return &RedisQueue{
		rdb:      rdb,
		queueKey: DefaultQueueKey,
		stateTTL: DefaultStateTTL,
	}
}

func (q *RedisQueue) SetQueueKey(key string) *RedisQueue {
	q.queueKey = key
	return q
}

func (q *RedisQueue) SetStateTTL(ttl time.Duration) *RedisQueue {
	q.stateTTL = ttl
	return q
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := q.rdb.LPush(ctx, q.queueKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	// BRPOP возвращает пару [ключ, значение].
	if len(res) != 2 { //nolint:mnd
		return nil, fmt.Errorf("dequeue job: unexpected reply of %d elements", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) SaveState(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal job state %s: %w", state.ID, err)
	}
	if err := q.rdb.Set(ctx, stateKeyPrefix+state.ID, data, q.stateTTL).Err(); err != nil {
		return fmt.Errorf("save job state %s: %w", state.ID, err)
	}
	return nil
}

func (q *RedisQueue) GetState(ctx context.Context, id string) (*State, error) {
	data, err := q.rdb.Get(ctx, stateKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("job %s: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job state %s: %w", id, err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal job state %s: %w", id, err)
	}
	return &state, nil
}
