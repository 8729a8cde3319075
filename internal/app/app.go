package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsdevblog/placement-billing/internal/config"
	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/jobs"
	"github.com/fsdevblog/placement-billing/internal/metrics"
	"github.com/fsdevblog/placement-billing/internal/ratelimit"
	"github.com/fsdevblog/placement-billing/internal/repository/pgrepo"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/fsdevblog/placement-billing/internal/tracing"
	"github.com/fsdevblog/placement-billing/internal/transport/api"
	"github.com/fsdevblog/placement-billing/internal/transport/wordpress"
	"github.com/fsdevblog/placement-billing/internal/worker/batchjob"
	"github.com/fsdevblog/placement-billing/internal/worker/lifecycle"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

const (
	shutdownTimeout        = 10 * time.Second
	readHeaderTimeout      = 5 * time.Second
	jobQueueCapacity       = 1000
	lifecycleLimit    uint = 100
	lifecycleWorkers  uint = 4
)

// Version проставляется при сборке через -ldflags.
var Version = "dev"

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app %s with config: %s", Version, a.Config)

	shutdownTracing, tracingErr := tracing.Init(notifyCtx, a.Config.OTLPEndpoint, Version)
	if tracingErr != nil {
		return fmt.Errorf("app run: %s", tracingErr.Error())
	}
	defer a.shutdown("tracing", shutdownTracing)

	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn, a.Config.LockTimeout)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	queue, authWindow, closeRedis, redisErr := a.initRedis(notifyCtx)
	if redisErr != nil {
		return fmt.Errorf("app run: %s", redisErr.Error())
	}
	defer closeRedis()

	m := metrics.New()

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:       unitOfWork,
		Publisher: wordpress.New(a.Config.PublishTimeout),
		Metrics:   m,
		Resolver:  discount.MustNewResolver(discount.DefaultTiers()),
		Pricing: service.Pricing{
			LinkPrice:           a.Config.PriceLink,
			ArticlePrice:        a.Config.PriceArticle,
			RenewalBaseDiscount: a.Config.RenewalBaseDiscount,
		},
		RenewalPeriod:  a.Config.RenewalPeriod,
		PublishTimeout: a.Config.PublishTimeout,
		Referral:       service.ReferralConfig{MinWithdrawal: a.Config.MinReferralWithdrawal},
		Logger:         a.Logger,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:            a.Logger,
		BillingService:    services.Billing,
		ReferralService:   services.Referral,
		JobQueue:          queue,
		JWTSecretKey:      []byte(a.Config.JWTSecret),
		AuthFailures:      authWindow,
		AuthFailuresLimit: a.Config.AuthFailLimit,
		AuthAlert:         func(string, int64) { m.ObserveAuthAlert() },
		Metrics:           m,
		MetricsHandler:    m.Handler(),
		ServiceName:       tracing.ServiceName,
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if runErr := server.ListenAndServe(); runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			errChan <- runErr
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2) //nolint:mnd
	go func() {
		defer wg.Done()
		lifecycle.New(services.Billing, a.Logger).
			SetInterval(a.Config.LifecycleInterval).
			SetLimitPerIteration(lifecycleLimit).
			SetWorkers(lifecycleWorkers).
			Run(notifyCtx)
	}()
	go func() {
		defer wg.Done()
		batchjob.New(queue, services.Billing, a.Logger).
			SetWorkers(a.Config.BatchJobWorkers).
			Run(notifyCtx)
	}()

	var runErr error
	select {
	case <-notifyCtx.Done():
	case runErr = <-errChan:
		stop()
	}

	a.shutdown("http server", server.Shutdown)
	// воркеры завершают текущие элементы до закрытия пула соединений.
	wg.Wait()

	if runErr != nil {
		return fmt.Errorf("app run: %w", runErr)
	}
	return nil
}

// initRedis при пустом REDIS_ADDR очередь заданий и счетчики работают в памяти процесса.
func (a *App) initRedis(ctx context.Context) (jobs.Queue, ratelimit.Window, func(), error) {
	if a.Config.RedisAddr == "" {
		a.Logger.Warn("REDIS_ADDR is not set, using in-memory job queue and auth failure counters")
		return jobs.NewMemoryQueue(jobQueueCapacity),
			ratelimit.NewMemoryWindow(a.Config.AuthFailWindow),
			func() {},
			nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("init redis: %w", err)
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			a.Logger.WithError(err).Error("close redis client")
		}
	}
	return jobs.NewRedisQueue(rdb), ratelimit.NewRedisWindow(rdb, a.Config.AuthFailWindow), closeFn, nil
}

func (a *App) shutdown(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		a.Logger.WithError(err).Errorf("shutdown %s", name)
	}
}

func initUOW(conn *pgxpool.Pool, lockTimeout time.Duration) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn, uow.WithLockTimeout(lockTimeout))

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.LedgerRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewLedgerRepository(dbtx)
		},
		repoargs.ProjectRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProjectRepository(dbtx)
		},
		repoargs.SiteRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewSiteRepository(dbtx)
		},
		repoargs.ContentRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewContentRepository(dbtx)
		},
		repoargs.PlacementRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPlacementRepository(dbtx)
		},
		repoargs.WithdrawalRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWithdrawalRepository(dbtx)
		},
	}
	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
