package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/internal/service/mocks"
	"github.com/fsdevblog/placement-billing/pkg/uow"
	uowmocks "github.com/fsdevblog/placement-billing/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type FactoryTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	uow      *uowmocks.MockUOW
	tx       *uowmocks.MockTX
	users    *mocks.MockUserRepository
	ledger   *mocks.MockLedgerRepository
	metrics  *mocks.MockMetricsRecorder
	repos    map[uow.RepositoryName]uow.Repository
	l        *logrus.Logger
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactoryTestSuite))
}

func (s *FactoryTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.uow = uowmocks.NewMockUOW(s.mockCtrl)
	s.tx = uowmocks.NewMockTX(s.mockCtrl)
	s.users = mocks.NewMockUserRepository(s.mockCtrl)
	s.ledger = mocks.NewMockLedgerRepository(s.mockCtrl)
	s.metrics = mocks.NewMockMetricsRecorder(s.mockCtrl)
	s.repos = map[uow.RepositoryName]uow.Repository{
		uow.RepositoryName(repoargs.UserRepoName):       s.users,
		uow.RepositoryName(repoargs.LedgerRepoName):     s.ledger,
		uow.RepositoryName(repoargs.ProjectRepoName):    mocks.NewMockProjectRepository(s.mockCtrl),
		uow.RepositoryName(repoargs.SiteRepoName):       mocks.NewMockSiteRepository(s.mockCtrl),
		uow.RepositoryName(repoargs.ContentRepoName):    mocks.NewMockContentRepository(s.mockCtrl),
		uow.RepositoryName(repoargs.PlacementRepoName):  mocks.NewMockPlacementRepository(s.mockCtrl),
		uow.RepositoryName(repoargs.WithdrawalRepoName): mocks.NewMockWithdrawalRepository(s.mockCtrl),
	}
	s.l = logrus.New()
	s.l.SetOutput(io.Discard)
}

func (s *FactoryTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *FactoryTestSuite) lookup(name uow.RepositoryName) (uow.Repository, error) {
	repo, ok := s.repos[name]
	if !ok {
		return nil, uow.ErrRepositoryNotRegistered
	}
	return repo, nil
}

func (s *FactoryTestSuite) factory() *AppServices {
	s.uow.EXPECT().GetRepository(gomock.Any()).DoAndReturn(s.lookup).AnyTimes()
	services, err := Factory(FactoryArgs{
		UOW:       s.uow,
		Publisher: mocks.NewMockPublisher(s.mockCtrl),
		Metrics:   s.metrics,
		Pricing:   DefaultPricing(),
		Logger:    s.l,
	})
	s.Require().NoError(err)
	return services
}

func (s *FactoryTestSuite) TestMissingRepository() {
	delete(s.repos, uow.RepositoryName(repoargs.WithdrawalRepoName))
	s.uow.EXPECT().GetRepository(gomock.Any()).DoAndReturn(s.lookup).AnyTimes()

	_, err := Factory(FactoryArgs{
		UOW:       s.uow,
		Publisher: mocks.NewMockPublisher(s.mockCtrl),
		Pricing:   DefaultPricing(),
		Logger:    s.l,
	})
	s.Require().Error(err)
	s.Contains(err.Error(), string(repoargs.WithdrawalRepoName))
}

func (s *FactoryTestSuite) TestDepositRunsInsideTransaction() {
	services := s.factory()

	user := &domain.User{
		ID:         7,
		Balance:    decimal.NewFromInt(40),
		TotalSpent: decimal.NewFromInt(150),
	}
	amount := decimal.RequireFromString("10.50")
	after := decimal.RequireFromString("50.50")

	s.uow.EXPECT().Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.tx)
		})
	s.tx.EXPECT().Get(gomock.Any()).DoAndReturn(s.lookup).AnyTimes()

	gomock.InOrder(
		s.users.EXPECT().LockByID(gomock.Any(), user.ID).Return(user, nil).Times(2),
		s.users.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args repoargs.UpdateUserBalance) (*domain.User, error) {
				s.Equal(user.ID, args.UserID)
				s.True(after.Equal(args.Balance))
				s.True(user.TotalSpent.Equal(args.TotalSpent))
				s.Equal(10, args.CurrentDiscount)
				return &domain.User{
					ID:              user.ID,
					Balance:         args.Balance,
					TotalSpent:      args.TotalSpent,
					CurrentDiscount: args.CurrentDiscount,
				}, nil
			}),
		s.ledger.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.Transaction, error) {
				s.Equal(domain.TransactionTypeDeposit, args.Type)
				s.True(user.Balance.Equal(args.BalanceBefore))
				s.True(after.Equal(args.BalanceAfter))
				return &domain.Transaction{
					ID:            1,
					UserID:        args.UserID,
					Type:          args.Type,
					Amount:        args.Amount,
					BalanceBefore: args.BalanceBefore,
					BalanceAfter:  args.BalanceAfter,
					Description:   args.Description,
				}, nil
			}),
	)
	s.metrics.EXPECT().ObserveLedgerEntry(domain.TransactionTypeDeposit, amount)
	s.metrics.EXPECT().ObserveOperation("deposit", nil, gomock.Any())

	change, err := services.Billing.Deposit(context.Background(), user.ID, amount, "")
	s.Require().NoError(err)
	s.True(after.Equal(change.User.Balance))
	s.Equal("Balance deposit", change.Entry.Description)
}

func (s *FactoryTestSuite) TestDepositTransactionFailure() {
	services := s.factory()
	connErr := errors.New("connection reset by peer")

	s.uow.EXPECT().Do(gomock.Any(), gomock.Any()).Return(connErr)
	s.metrics.EXPECT().ObserveOperation("deposit", gomock.Not(nil), gomock.Any())

	_, err := services.Billing.Deposit(context.Background(), 7, decimal.NewFromInt(10), "")
	s.Require().ErrorIs(err, connErr)
	s.False(domain.IsBusinessError(err))
	s.False(domain.IsRetryable(err))
}
