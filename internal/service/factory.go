package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	Billing  *BillingService
	Referral *ReferralService
}

type FactoryArgs struct {
	UOW            uow.UOW
	Publisher      Publisher
	Metrics        MetricsRecorder
	Resolver       *discount.Resolver
	Pricing        Pricing
	RenewalPeriod  time.Duration
	PublishTimeout time.Duration
	Referral       ReferralConfig
	Logger         *logrus.Logger
}

// Factory собирает сервисы с явной передачей зависимостей.
func Factory(args FactoryArgs) (*AppServices, error) {
	resolver := args.Resolver
	if resolver == nil {
		resolver = discount.MustNewResolver(discount.DefaultTiers())
	}

	balances := NewBalanceManager(resolver, args.Logger).SetMetrics(args.Metrics)

	placements, placementsErr := NewPlacementManager(args.UOW, args.Publisher, PlacementConfig{
		RenewalPeriod:  args.RenewalPeriod,
		PublishTimeout: args.PublishTimeout,
	}, args.Logger)
	if placementsErr != nil {
		return nil, fmt.Errorf("service factory: %s", placementsErr.Error())
	}

	billing, billingErr := NewBillingService(args.UOW, balances, placements, resolver, BillingConfig{
		Pricing:        args.Pricing,
		RenewalPeriod:  args.RenewalPeriod,
		CleanupTimeout: args.PublishTimeout,
	}, args.Logger)
	if billingErr != nil {
		return nil, fmt.Errorf("service factory: %s", billingErr.Error())
	}
	billing.SetMetrics(args.Metrics)

	referral, referralErr := NewReferralService(args.UOW, balances, args.Referral, args.Logger)
	if referralErr != nil {
		return nil, fmt.Errorf("service factory: %s", referralErr.Error())
	}

	referral.SetMetrics(args.Metrics)

	return &AppServices{
		Billing:  billing,
		Referral: referral,
	}, nil
}
