package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/placement-billing/internal/jobs"
	"github.com/fsdevblog/placement-billing/internal/ratelimit"
	"github.com/fsdevblog/placement-billing/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	DefaultServiceTimeout  = 3 * time.Second
	PurchaseServiceTimeout = 30 * time.Second
	BatchServiceTimeout    = 10 * time.Minute
)

const (
	RouteGroup = "/api"

	BalanceRoute            = "/billing/balance"
	DiscountRoute           = "/billing/discount"
	TransactionsRoute       = "/billing/transactions"
	DepositRoute            = "/billing/deposit"
	PurchaseRoute           = "/billing/purchase"
	BatchPurchaseRoute      = "/billing/purchase/batch"
	AsyncBatchPurchaseRoute = "/billing/purchase/batch/async"
	JobsRoutePrefix         = "/billing/jobs/"
	JobRoute                = JobsRoutePrefix + ":id"
	RenewRoute              = "/billing/placements/:id/renew"
	AutoRenewalRoute        = "/billing/placements/:id/auto-renewal"
	PlacementRoute          = "/billing/placements/:id"
	BatchDeleteRoute        = "/billing/placements/batch-delete"

	ReferralWithdrawRoute = "/referral/withdraw"
	WalletWithdrawRoute   = "/referral/withdraw/wallet"
	WithdrawalsRoute      = "/referral/withdrawals"

	ApproveWithdrawalRoute = "/admin/referral/withdrawals/:id/approve"
	RejectWithdrawalRoute  = "/admin/referral/withdrawals/:id/reject"
	AdjustBalanceRoute     = "/admin/users/:id/adjust"

	MetricsRoute = "/metrics"
	HealthRoute  = "/health"
)

// RouterArgs зависимости роутера. AuthFailures, Metrics, MetricsHandler и ServiceName необязательны.
type RouterArgs struct {
	Logger          *logrus.Logger
	BillingService  BillingServicer
	ReferralService ReferralServicer
	JobQueue        jobs.Queue
	JWTSecretKey    []byte

	AuthFailures      ratelimit.Window
	AuthFailuresLimit int64
	AuthAlert         middlewares.AlertFunc

	Metrics        middlewares.HTTPObserver
	MetricsHandler http.Handler
	ServiceName    string
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if args.ServiceName != "" {
		r.Use(otelgin.Middleware(args.ServiceName))
	}
	if args.Metrics != nil {
		r.Use(middlewares.Metrics(args.Metrics))
	}
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	r.GET(HealthRoute, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if args.MetricsHandler != nil {
		r.GET(MetricsRoute, gin.WrapH(args.MetricsHandler))
	}

	api := r.Group(RouteGroup)
	if args.AuthFailures != nil && args.Logger != nil {
		var alerts []middlewares.AlertFunc
		if args.AuthAlert != nil {
			alerts = append(alerts, args.AuthAlert)
		}
		api.Use(middlewares.AuthFailures(args.AuthFailures, args.AuthFailuresLimit, args.Logger, alerts...))
	}
	// ниже все роуты группы требуют авторизованного пользователя.
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))

	billing := NewBillingHandler(args.BillingService)
	api.GET(BalanceRoute, billing.Balance)
	api.GET(DiscountRoute, billing.Discount)
	api.GET(TransactionsRoute, billing.Transactions)
	api.POST(DepositRoute, billing.Deposit)
	api.POST(PurchaseRoute, billing.Purchase)
	api.POST(BatchPurchaseRoute, billing.BatchPurchase)
	api.POST(RenewRoute, billing.Renew)
	api.PATCH(AutoRenewalRoute, billing.AutoRenewal)
	api.DELETE(PlacementRoute, billing.Delete)
	api.POST(BatchDeleteRoute, billing.BatchDelete)

	if args.JobQueue != nil {
		jobsHandler := NewJobsHandler(args.JobQueue)
		api.POST(AsyncBatchPurchaseRoute, jobsHandler.Submit)
		api.GET(JobRoute, jobsHandler.Status)
	}

	referral := NewReferralHandler(args.ReferralService)
	api.POST(ReferralWithdrawRoute, referral.Withdraw)
	api.POST(WalletWithdrawRoute, referral.WalletWithdraw)
	api.GET(WithdrawalsRoute, referral.Withdrawals)

	admin := NewAdminHandler(args.BillingService, args.ReferralService)
	adminGroup := api.Group("", middlewares.AdminRequired())
	adminGroup.POST(ApproveWithdrawalRoute, admin.ApproveWithdrawal)
	adminGroup.POST(RejectWithdrawalRoute, admin.RejectWithdrawal)
	adminGroup.POST(AdjustBalanceRoute, admin.Adjust)

	return r, nil
}
