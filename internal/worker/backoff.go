// Package worker общие помощники фоновых обработчиков.
package worker

import (
	"context"
	"math/rand/v2"
	"time"
)

// jitter возвращает число, рассыпавшееся относительно value на случайный процент в пределах
// [1-minPercent, 1+maxPercent].
// Например, если minPercent=0.15, maxPercent=0.15, получим диапазон [0.85*value, 1.15*value].
//
// minPercent и maxPercent должны быть >= 0 (0.1 = 10%). Если указано иное, значение выставится в 0.15.
func jitter(value, minPercent, maxPercent float64) float64 {
	if minPercent < 0 || maxPercent < 0 {
		minPercent = 0.15
		maxPercent = 0.15
	}
	factor := 1 - minPercent + rand.Float64()*(minPercent+maxPercent) // nolint:gosec
	return value * factor
}

// Backoff экспоненциальная пауза перед попыткой attempt (начиная с 1): base * 2^(attempt-1) с разбросом
// 15%, не больше limit.
func Backoff(base, limit time.Duration, attempt uint) time.Duration {
	if attempt == 0 {
		attempt = 1
	}
	d := base
	for i := uint(1); i < attempt && d < limit; i++ {
		d *= 2
	}
	d = min(d, limit)
	return time.Duration(jitter(float64(d), 0.15, 0.15)) //nolint:mnd
}

// Sleep ждет d или отмены контекста. Возвращает false, если контекст отменен.
func Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
