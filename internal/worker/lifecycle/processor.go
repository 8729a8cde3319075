// Package lifecycle фоновая обработка размещений по времени: отложенная публикация, автопродление
// и истечение срока.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	defaultInterval               = time.Minute
	defaultServiceTimeout         = 3 * time.Second
	defaultItemTimeout            = 30 * time.Second
	defaultLimitPerIteration uint = 100
	defaultWorkers           uint = 4
)

type stage string

const (
	stagePublish stage = "publish_scheduled"
	stageRenew   stage = "auto_renew"
	stageExpire  stage = "expire"
)

// Stats итог одной итерации обработчика.
type Stats struct {
	Published     int
	PublishFailed int
	Renewed       int
	RenewDeclined int
	Expired       int
	Errors        int
}

// Processor периодически выбирает размещения, по которым наступил срок, и обрабатывает каждое в отдельной
// транзакции через сервисный слой.
type Processor struct {
	svs               Servicer
	l                 *logrus.Entry
	interval          time.Duration
	limitPerIteration uint
	workers           uint
}

func New(svs Servicer, l *logrus.Logger) *Processor {
	return &Processor{
		svs: svs,
		l: l.WithFields(logrus.Fields{
			"component": "lifecycle",
			"module":    "processor",
		}),
		interval:          defaultInterval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultWorkers,
	}
}

func (p *Processor) SetInterval(interval time.Duration) *Processor {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

// SetLimitPerIteration устанавливает кол-во размещений каждого вида, обрабатываемых за одну итерацию.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

// Run выполняет итерации с интервалом до отмены контекста. Первая итерация запускается сразу.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"interval":          p.interval.String(),
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
	}).Info("Starting")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		stats := p.process(ctx)
		if stats != (Stats{}) {
			p.l.WithFields(logrus.Fields{
				"published":      stats.Published,
				"publish_failed": stats.PublishFailed,
				"renewed":        stats.Renewed,
				"renew_declined": stats.RenewDeclined,
				"expired":        stats.Expired,
				"errors":         stats.Errors,
			}).Info("iteration finished")
		}

		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
		}
	}
}

// process выполняет три этапа по порядку: публикация, затем автопродление, затем истечение. Продление
// идет раньше истечения, чтобы ссылки с автопродлением не истекали при наличии средств.
func (p *Processor) process(ctx context.Context) Stats {
	var stats Stats
	for _, st := range []stage{stagePublish, stageRenew, stageExpire} {
		if ctx.Err() != nil {
			return stats
		}
		placements, err := p.produce(ctx, st)
		if err != nil {
			p.l.WithError(err).WithField("stage", st).Error("list due placements")
			stats.Errors++
			continue
		}
		for _, res := range p.runWorkers(ctx, st, placements) {
			stats.add(res)
		}
	}
	return stats
}

func (p *Processor) produce(ctx context.Context, st stage) ([]domain.Placement, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	switch st {
	case stagePublish:
		return p.svs.DueScheduled(reqCtx, p.limitPerIteration)
	case stageRenew:
		return p.svs.DueAutoRenewal(reqCtx, p.limitPerIteration)
	case stageExpire:
		return p.svs.DueExpiry(reqCtx, p.limitPerIteration)
	default:
		return nil, fmt.Errorf("unknown stage %s", st)
	}
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeDeclined
	outcomeSkipped
	outcomeError
)

type workerResult struct {
	Stage       stage
	PlacementID int64
	Outcome     outcome
	Error       error
}

func (s *Stats) add(res workerResult) {
	switch {
	case res.Outcome == outcomeError:
		s.Errors++
	case res.Outcome == outcomeSkipped:
	case res.Stage == stagePublish && res.Outcome == outcomeDeclined:
		s.PublishFailed++
	case res.Stage == stagePublish:
		s.Published++
	case res.Stage == stageRenew && res.Outcome == outcomeDeclined:
		s.RenewDeclined++
	case res.Stage == stageRenew:
		s.Renewed++
	case res.Stage == stageExpire:
		s.Expired++
	}
}

// runWorkers fan-out/fan-in по размещениям этапа.
func (p *Processor) runWorkers(ctx context.Context, st stage, placements []domain.Placement) []workerResult {
	if len(placements) == 0 {
		return nil
	}
	taskCh := make(chan int64, len(placements))
	for _, placement := range placements {
		taskCh <- placement.ID
	}
	close(taskCh)

	resultCh := make(chan workerResult, len(placements))
	wg := new(sync.WaitGroup)
	for range min(p.workers, uint(len(placements))) { //nolint:gosec
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range taskCh {
				if ctx.Err() != nil {
					return
				}
				resultCh <- p.handle(ctx, st, id)
			}
		}()
	}
	wg.Wait()
	close(resultCh)

	results := make([]workerResult, 0, len(placements))
	for res := range resultCh {
		l := p.l.WithFields(logrus.Fields{"stage": res.Stage, "placement_id": res.PlacementID})
		switch res.Outcome {
		case outcomeError:
			l.WithError(res.Error).Error("placement processing failed")
		case outcomeDeclined:
			l.WithError(res.Error).Warn("placement declined")
		case outcomeSkipped:
			l.WithError(res.Error).Debug("placement skipped")
		case outcomeDone:
			l.Debug("placement processed")
		}
		results = append(results, res)
	}
	return results
}

func (p *Processor) handle(ctx context.Context, st stage, placementID int64) workerResult {
	itemCtx, cancel := context.WithTimeout(ctx, defaultItemTimeout)
	defer cancel()

	res := workerResult{Stage: st, PlacementID: placementID}
	var err error
	switch st {
	case stagePublish:
		var published *service.PublishScheduledResult
		published, err = p.svs.PublishScheduled(itemCtx, placementID)
		if err == nil && published.Failed {
			res.Outcome = outcomeDeclined
			res.Error = errors.New("publication failed, refunded")
			return res
		}
	case stageRenew:
		_, err = p.svs.AutoRenew(itemCtx, placementID)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			res.Outcome = outcomeDeclined
			res.Error = err
			return res
		}
	case stageExpire:
		_, err = p.svs.ExpirePlacement(itemCtx, placementID)
	}

	switch {
	case err == nil:
		res.Outcome = outcomeDone
	// размещение изменилось между выборкой и блокировкой: удалено, продлено или уже обработано.
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFoundOrForbidden):
		res.Outcome = outcomeSkipped
		res.Error = err
	default:
		res.Outcome = outcomeError
		res.Error = err
	}
	return res
}
