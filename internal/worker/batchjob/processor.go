// Package batchjob выполняет асинхронные пакетные покупки из очереди заданий.
package batchjob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/jobs"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/fsdevblog/placement-billing/internal/transport/api/response"
	"github.com/fsdevblog/placement-billing/internal/worker"
	"github.com/sirupsen/logrus"
)

const (
	defaultWorkers           uint = 2
	defaultMaxAttempts       uint = 3
	defaultBackoff                = 2 * time.Second
	defaultMaxBackoff             = time.Minute
	defaultDequeueWait            = 5 * time.Second
	defaultJobTimeout             = 10 * time.Minute
	defaultStateWriteTimeout      = 3 * time.Second
)

// Processor забирает задания из очереди и выполняет их через BillingService.BatchPurchase.
type Processor struct {
	queue       jobs.Queue
	svs         Servicer
	l           *logrus.Entry
	workers     uint
	maxAttempts uint
	backoff     time.Duration
	maxBackoff  time.Duration
	dequeueWait time.Duration
	jobTimeout  time.Duration
}

func New(queue jobs.Queue, svs Servicer, l *logrus.Logger) *Processor {
	return &Processor{
		queue: queue,
		svs:   svs,
		l: l.WithFields(logrus.Fields{
			"component": "batchjob",
			"module":    "processor",
		}),
		workers:     defaultWorkers,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		maxBackoff:  defaultMaxBackoff,
		dequeueWait: defaultDequeueWait,
		jobTimeout:  defaultJobTimeout,
	}
}

// SetWorkers устанавливает кол-во воркеров, параллельно выполняющих задания.
func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

// SetMaxAttempts устанавливает кол-во попыток выполнения задания при инфраструктурных ошибках.
func (p *Processor) SetMaxAttempts(attempts uint) *Processor {
	if attempts > 0 {
		p.maxAttempts = attempts
	}
	return p
}

// SetBackoff устанавливает начальную паузу перед повторной постановкой задания в очередь.
func (p *Processor) SetBackoff(backoff time.Duration) *Processor {
	p.backoff = backoff
	return p
}

func (p *Processor) SetDequeueWait(wait time.Duration) *Processor {
	p.dequeueWait = wait
	return p
}

// Run запускает воркеров и блокируется до отмены контекста.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"workers":     p.workers,
		"maxAttempts": p.maxAttempts,
	}).Info("Starting")

	wg := new(sync.WaitGroup)
	for i := range p.workers {
		wg.Add(1)
		go p.runWorker(ctx, wg, i+1)
	}
	wg.Wait()
	p.l.Info("Got stop signal, exiting...")
}

func (p *Processor) runWorker(ctx context.Context, wg *sync.WaitGroup, workerID uint) {
	defer wg.Done()
	l := p.l.WithField("worker", workerID)

	for {
		if ctx.Err() != nil {
			return
		}
		job, err := p.queue.Dequeue(ctx, p.dequeueWait)
		if err != nil {
			if errors.Is(err, jobs.ErrEmpty) || ctx.Err() != nil {
				continue
			}
			l.WithError(err).Error("dequeue job")
			worker.Sleep(ctx, time.Second) // небольшая пауза, чтобы не нагружать redis при сбое.
			continue
		}
		p.process(ctx, job)
	}
}

// process выполняет одно задание. Бизнес-ошибка всего пакета (например, превышение размера) завершает
// задание статусом failed. Инфраструктурная ошибка возвращает задание в очередь, пока не исчерпаны попытки.
// Повтор выполняет только необработанные элементы и дописывает их к результату предыдущих попыток.
// Элемент, закоммиченный без сохраненного результата, при повторе отклоняется как ErrAlreadyPlaced.
func (p *Processor) process(ctx context.Context, job *jobs.Job) {
	l := p.l.WithFields(logrus.Fields{
		"job_id":    job.ID,
		"user_id":   job.UserID,
		"attempt":   job.Attempt + 1,
		"processed": job.Processed,
	})
	p.saveState(ctx, l, jobs.StateOf(*job, jobs.StatusActive))

	previous := p.previousResult(l, job)
	remaining := job.Remaining()
	if len(remaining) == 0 {
		p.finish(ctx, l, job, jobs.StatusCompleted, previous, nil)
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	res, err := p.svs.BatchPurchase(jobCtx, job.UserID, remaining)
	cancel()

	merged := mergeResults(previous, res, job.Processed)

	if err == nil {
		l.WithFields(logrus.Fields{
			"successful": merged.Successful,
			"failed":     merged.Failed,
		}).Info("job completed")
		p.finish(ctx, l, job, jobs.StatusCompleted, merged, nil)
		return
	}

	if domain.IsBusinessError(err) || job.Attempt+1 >= p.maxAttempts || ctx.Err() != nil {
		l.WithError(err).Error("job failed")
		p.finish(ctx, l, job, jobs.StatusFailed, merged, err)
		return
	}

	if res != nil {
		job.Processed += res.Successful + res.Failed
	}
	if merged != nil {
		data, marshalErr := json.Marshal(merged)
		if marshalErr != nil {
			l.WithError(marshalErr).Error("marshal partial job result")
		} else {
			job.Partial = data
		}
	}
	p.retry(ctx, l, job, merged, err)
}

func (p *Processor) retry(
	ctx context.Context,
	l *logrus.Entry,
	job *jobs.Job,
	partial *response.BatchPurchase,
	cause error,
) {
	job.Attempt++
	delay := worker.Backoff(p.backoff, p.maxBackoff, job.Attempt)
	l.WithError(cause).WithField("delay", delay.String()).Warn("job will be retried")

	state := jobs.StateOf(*job, jobs.StatusQueued)
	state.Error = cause.Error()
	state.Result = job.Partial
	p.saveState(ctx, l, state)

	if !worker.Sleep(ctx, delay) {
		p.finish(context.WithoutCancel(ctx), l, job, jobs.StatusFailed, partial, fmt.Errorf("shutdown before retry: %w", cause))
		return
	}
	if err := p.queue.Enqueue(ctx, *job); err != nil {
		l.WithError(err).Error("re-enqueue job")
		p.finish(ctx, l, job, jobs.StatusFailed, partial, errors.Join(cause, err))
	}
}

// previousResult результат предыдущих попыток задания или nil для первой попытки.
func (p *Processor) previousResult(l *logrus.Entry, job *jobs.Job) *response.BatchPurchase {
	if len(job.Partial) == 0 {
		return nil
	}
	var prev response.BatchPurchase
	if err := json.Unmarshal(job.Partial, &prev); err != nil {
		l.WithError(err).Error("unmarshal partial job result")
		return nil
	}
	return &prev
}

// mergeResults дописывает результат текущей попытки к результату предыдущих. Индексы элементов текущей
// попытки сдвигаются на offset, чтобы указывать на позиции в исходном задании.
func mergeResults(prev *response.BatchPurchase, res *service.BatchPurchaseResult, offset int) *response.BatchPurchase {
	if res == nil {
		return prev
	}
	cur := response.NewBatchPurchase(res)
	for i := range cur.Results {
		cur.Results[i].Index += offset
	}
	for i := range cur.Errors {
		cur.Errors[i].Index += offset
	}
	if prev == nil {
		return cur
	}
	return &response.BatchPurchase{
		Successful:   prev.Successful + cur.Successful,
		Failed:       prev.Failed + cur.Failed,
		Results:      append(prev.Results, cur.Results...),
		Errors:       append(prev.Errors, cur.Errors...),
		FinalBalance: cur.FinalBalance,
	}
}

func (p *Processor) finish(
	ctx context.Context,
	l *logrus.Entry,
	job *jobs.Job,
	status jobs.Status,
	res *response.BatchPurchase,
	jobErr error,
) {
	state := jobs.StateOf(*job, status)
	if jobErr != nil {
		state.Error = response.ErrorMessage(jobErr)
	}
	if res != nil {
		data, err := json.Marshal(res)
		if err != nil {
			l.WithError(err).Error("marshal job result")
		} else {
			state.Result = data
		}
	}
	p.saveState(ctx, l, state)
}

func (p *Processor) saveState(ctx context.Context, l *logrus.Entry, state jobs.State) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultStateWriteTimeout)
	defer cancel()
	if err := p.queue.SaveState(saveCtx, state); err != nil {
		l.WithError(err).WithField("status", state.Status).Error("save job state")
	}
}
