// Package ratelimit счетчики событий в скользящем окне.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Window считает события по ключу за последние N секунд.
type Window interface {
	// Hit регистрирует событие и возвращает кол-во событий в окне с учетом нового.
	Hit(ctx context.Context, key string) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
}

const defaultKeyPrefix = "billing:ratelimit:"

// RedisWindow окно на sorted set: score и member каждого события задаются временем его регистрации.
// Разделяется всеми экземплярами сервиса.
type RedisWindow struct {
	rdb    redis.UniversalClient
	size   time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisWindow(rdb redis.UniversalClient, size time.Duration) *RedisWindow {
	return &RedisWindow{rdb: rdb, size: size, prefix: defaultKeyPrefix, now: time.Now}
}

func (w *RedisWindow) SetPrefix(prefix string) *RedisWindow {
	w.prefix = prefix
	return w
}

func (w *RedisWindow) Hit(ctx context.Context, key string) (int64, error) {
	now := w.now()
	redisKey := w.prefix + key

	var card *redis.IntCmd
	_, err := w.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", w.minScore(now))
		pipe.ZAdd(ctx, redisKey, &redis.Z{
			Score:  float64(now.UnixNano()),
			Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString(),
		})
		card = pipe.ZCard(ctx, redisKey)
		pipe.Expire(ctx, redisKey, w.size)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("register hit for %s: %w", key, err)
	}
	return card.Val(), nil
}

func (w *RedisWindow) Count(ctx context.Context, key string) (int64, error) {
	count, err := w.rdb.ZCount(ctx, w.prefix+key, w.minScore(w.now()), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count hits for %s: %w", key, err)
	}
	return count, nil
}

// minScore исключающая нижняя граница окна.
func (w *RedisWindow) minScore(now time.Time) string {
	return "(" + strconv.FormatInt(now.Add(-w.size).UnixNano(), 10)
}

// MemoryWindow окно в памяти одного процесса.
type MemoryWindow struct {
	mu     sync.Mutex
	size   time.Duration
	events map[string][]time.Time
	now    func() time.Time
}

func NewMemoryWindow(size time.Duration) *MemoryWindow {
	return &MemoryWindow{size: size, events: make(map[string][]time.Time), now: time.Now}
}

func (w *MemoryWindow) Hit(_ context.Context, key string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	events := append(w.prune(key, now), now)
	w.events[key] = events
	return int64(len(events)), nil
}

func (w *MemoryWindow) Count(_ context.Context, key string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	events := w.prune(key, w.now())
	if len(events) == 0 {
		delete(w.events, key)
	} else {
		w.events[key] = events
	}
	return int64(len(events)), nil
}

// prune отбрасывает события старше окна. Вызывается под мьютексом.
func (w *MemoryWindow) prune(key string, now time.Time) []time.Time {
	events := w.events[key]
	border := now.Add(-w.size)
	i := 0
	for i < len(events) && !events[i].After(border) {
		i++
	}
	return events[i:]
}
