package service

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/service/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

const year = 365 * 24 * time.Hour

type BillingServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	publisher *mocks.MockPublisher
	store     *memStore
	uow       *memUOW
	service   *BillingService
	now       time.Time
}

func TestBillingServiceSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}

func (s *BillingServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.publisher = mocks.NewMockPublisher(s.mockCtrl)
	s.store = newMemStore()
	s.uow = newMemUOW(s.store)
	s.now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	l := logrus.New()
	l.SetOutput(io.Discard)
	resolver := discount.MustNewResolver(discount.DefaultTiers())
	clock := func() time.Time { return s.now }

	placements, err := NewPlacementManager(s.uow, s.publisher, PlacementConfig{
		RenewalPeriod:  year,
		PublishTimeout: time.Second,
	}, l)
	s.Require().NoError(err)
	placements.now = clock

	s.service, err = NewBillingService(s.uow, NewBalanceManager(resolver, l), placements, resolver, BillingConfig{
		Pricing:       DefaultPricing(),
		RenewalPeriod: year,
	}, l)
	s.Require().NoError(err)
	s.service.now = clock
}

func (s *BillingServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// --- фикстуры ---

func (s *BillingServiceTestSuite) addUser(balance, spent string) int64 {
	id := s.store.nextID()
	s.store.users[id] = domain.User{
		ID:         id,
		Username:   gofakeit.Username(),
		Balance:    decimal.RequireFromString(balance),
		TotalSpent: decimal.RequireFromString(spent),
	}
	return id
}

func (s *BillingServiceTestSuite) addProject(userID int64) int64 {
	id := s.store.nextID()
	s.store.projects[id] = domain.Project{ID: id, UserID: userID, Name: gofakeit.Word()}
	return id
}

func (s *BillingServiceTestSuite) addSite(siteType domain.SiteType) int64 {
	id := s.store.nextID()
	s.store.sites[id] = domain.Site{
		ID:          id,
		SiteURL:     gofakeit.URL(),
		APIKey:      gofakeit.UUID(),
		SiteType:    siteType,
		MaxLinks:    10,
		MaxArticles: 30,
	}
	return id
}

func (s *BillingServiceTestSuite) addContent(projectID int64, t domain.PlacementType, limit int) int64 {
	id := s.store.nextID()
	s.store.contents[id] = domain.Content{
		ID:         id,
		ProjectID:  projectID,
		Type:       t,
		URL:        gofakeit.URL(),
		AnchorText: gofakeit.Word(),
		Title:      gofakeit.Word(),
		Body:       gofakeit.Word(),
		Slug:       gofakeit.Word(),
		UsageLimit: limit,
	}
	return id
}

// purchaseSetup пользователь с проектом, сайтом и контентом, готовыми к покупке.
type purchaseSetup struct {
	userID    int64
	projectID int64
	siteID    int64
	contentID int64
}

func (s *BillingServiceTestSuite) setupPurchase(
	balance string,
	t domain.PlacementType,
	siteType domain.SiteType,
) purchaseSetup {
	userID := s.addUser(balance, "0")
	projectID := s.addProject(userID)
	return purchaseSetup{
		userID:    userID,
		projectID: projectID,
		siteID:    s.addSite(siteType),
		contentID: s.addContent(projectID, t, 10),
	}
}

func (p purchaseSetup) args(t domain.PlacementType) PurchaseArgs {
	return PurchaseArgs{
		UserID:     p.userID,
		ProjectID:  p.projectID,
		SiteID:     p.siteID,
		Type:       t,
		ContentIDs: []int64{p.contentID},
	}
}

func (s *BillingServiceTestSuite) decEqual(want string, got decimal.Decimal) {
	s.True(decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func (s *BillingServiceTestSuite) userLedger(userID int64) []domain.Transaction {
	var res []domain.Transaction
	for _, e := range s.store.ledger {
		if e.UserID == userID {
			res = append(res, e)
		}
	}
	return res
}

// assertLedgerConsistent каждая запись леджера продолжает предыдущую, последняя совпадает с текущим балансом.
func (s *BillingServiceTestSuite) assertLedgerConsistent(userID int64, initial string) {
	balance := decimal.RequireFromString(initial)
	for _, e := range s.userLedger(userID) {
		s.True(balance.Equal(e.BalanceBefore), "entry %d starts at %s, expected %s", e.ID, e.BalanceBefore, balance)
		balance = e.BalanceAfter
	}
	s.True(balance.Equal(s.store.users[userID].Balance), "ledger ends at %s, balance %s",
		balance, s.store.users[userID].Balance)
	s.False(s.store.users[userID].Balance.IsNegative())
}

// --- покупка ---

func (s *BillingServiceTestSuite) TestPurchaseLinkFirstTier() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)

	res, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	s.decEqual("75", res.NewBalance)
	s.decEqual("25", res.PricePaid)
	s.Equal(0, res.DiscountApplied)
	s.Equal(0, res.NewDiscount)
	s.Equal(domain.PlacementStatusPlaced, res.Placement.Status)
	s.Require().NotNil(res.Placement.ExpiresAt)
	s.Equal(s.now.Add(year), *res.Placement.ExpiresAt)

	user := s.store.users[setup.userID]
	s.decEqual("75", user.Balance)
	s.decEqual("25", user.TotalSpent)
	s.Equal(1, s.store.sites[setup.siteID].UsedLinks)
	s.Equal(1, s.store.contents[setup.contentID].UsageCount)

	ledger := s.userLedger(setup.userID)
	s.Require().Len(ledger, 1)
	s.Equal(domain.TransactionTypePurchase, ledger[0].Type)
	s.decEqual("100", ledger[0].BalanceBefore)
	s.decEqual("75", ledger[0].BalanceAfter)
	s.Require().NotNil(ledger[0].PlacementID)
	s.Equal(res.Placement.ID, *ledger[0].PlacementID)
}

func (s *BillingServiceTestSuite) TestDiscountAppliesFromNextPurchase() {
	userID := s.addUser("1000", "0")
	projectID := s.addProject(userID)

	buy := func() *PurchaseResult {
		siteID := s.addSite(domain.SiteTypeWordPress)
		contentID := s.addContent(projectID, domain.PlacementTypeLink, 10)
		res, err := s.service.Purchase(s.T().Context(), PurchaseArgs{
			UserID:     userID,
			ProjectID:  projectID,
			SiteID:     siteID,
			Type:       domain.PlacementTypeLink,
			ContentIDs: []int64{contentID},
		})
		s.Require().NoError(err)
		return res
	}

	for range 3 {
		s.decEqual("25", buy().PricePaid)
	}
	// покупка, пересекающая порог в $100, оплачивается без скидки.
	crossing := buy()
	s.decEqual("25", crossing.PricePaid)
	s.Equal(0, crossing.DiscountApplied)
	s.Equal(10, crossing.NewDiscount)
	s.decEqual("100", s.store.users[userID].TotalSpent)

	next := buy()
	s.Equal(10, next.DiscountApplied)
	s.decEqual("22.5", next.PricePaid)
	s.decEqual("25", next.Placement.OriginalPrice)
	s.decEqual("22.5", next.Placement.FinalPrice)

	s.assertLedgerConsistent(userID, "1000")
}

func (s *BillingServiceTestSuite) TestPurchaseRollsBackOnPublishFailure() {
	setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeWordPress)
	site := s.store.sites[setup.siteID]

	s.publisher.EXPECT().
		Publish(gomock.Any(), site.SiteURL, site.APIKey, gomock.Any()).
		Return(int64(0), errors.New("plugin responded 500"))

	_, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeArticle))
	s.Require().ErrorIs(err, domain.ErrPublishFailed)
	s.True(domain.IsRetryable(err))

	var pubErr *domain.PublishError
	s.Require().ErrorAs(err, &pubErr)
	s.Equal(site.SiteURL, pubErr.SiteURL)

	// состояние как до вызова.
	s.decEqual("100", s.store.users[setup.userID].Balance)
	s.decEqual("0", s.store.users[setup.userID].TotalSpent)
	s.Empty(s.store.placements)
	s.Empty(s.store.ledger)
	s.Equal(0, s.store.sites[setup.siteID].UsedArticles)
	s.Equal(0, s.store.contents[setup.contentID].UsageCount)
}

func (s *BillingServiceTestSuite) TestPurchaseArticlePublishes() {
	setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeWordPress)
	content := s.store.contents[setup.contentID]

	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), domain.PostContent{
			Title: content.Title,
			Body:  content.Body,
			Slug:  content.Slug,
		}).
		Return(int64(42), nil)

	res, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeArticle))
	s.Require().NoError(err)

	s.decEqual("15", res.PricePaid)
	s.Equal(domain.PlacementStatusPlaced, res.Placement.Status)
	s.Require().NotNil(res.Placement.WordPressPostID)
	s.Equal(int64(42), *res.Placement.WordPressPostID)
	s.Nil(res.Placement.ExpiresAt)
	s.Equal(1, s.store.sites[setup.siteID].UsedArticles)
}

func (s *BillingServiceTestSuite) TestPurchaseArticleOnStaticSiteSkipsPublisher() {
	setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeStatic)

	res, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeArticle))
	s.Require().NoError(err)
	s.Equal(domain.PlacementStatusPlaced, res.Placement.Status)
	s.Nil(res.Placement.WordPressPostID)
}

func (s *BillingServiceTestSuite) TestPurchaseScheduled() {
	setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeWordPress)
	args := setup.args(domain.PlacementTypeArticle)
	publishAt := s.now.Add(48 * time.Hour)
	args.ScheduledDate = &publishAt

	res, err := s.service.Purchase(s.T().Context(), args)
	s.Require().NoError(err)

	s.Equal(domain.PlacementStatusScheduled, res.Placement.Status)
	s.Nil(res.Placement.PublishedAt)
	s.decEqual("85", res.NewBalance)
}

func (s *BillingServiceTestSuite) TestPurchaseRejectedBeforeCharge() {
	past := s.now.Add(-24 * time.Hour)
	tooFar := s.now.Add(MaxScheduleAhead + time.Hour)

	cases := []struct {
		name    string
		prepare func(p *purchaseSetup, args *PurchaseArgs)
		wantErr error
	}{
		{
			name: "foreign project",
			prepare: func(_ *purchaseSetup, args *PurchaseArgs) {
				args.ProjectID = s.addProject(s.addUser("0", "0"))
			},
			wantErr: domain.ErrNotFoundOrForbidden,
		},
		{
			name: "missing site",
			prepare: func(_ *purchaseSetup, args *PurchaseArgs) {
				args.SiteID = 999999
			},
			wantErr: domain.ErrNotFoundOrForbidden,
		},
		{
			name: "content of another project",
			prepare: func(p *purchaseSetup, args *PurchaseArgs) {
				other := s.addProject(p.userID)
				args.ContentIDs = []int64{s.addContent(other, domain.PlacementTypeLink, 10)}
			},
			wantErr: domain.ErrNotFoundOrForbidden,
		},
		{
			name: "exhausted content",
			prepare: func(p *purchaseSetup, args *PurchaseArgs) {
				args.ContentIDs = []int64{s.addContent(p.projectID, domain.PlacementTypeLink, 0)}
			},
			wantErr: domain.ErrExhaustedCapacity,
		},
		{
			name: "site without free link slots",
			prepare: func(p *purchaseSetup, _ *PurchaseArgs) {
				site := s.store.sites[p.siteID]
				site.UsedLinks = site.MaxLinks
				s.store.sites[p.siteID] = site
			},
			wantErr: domain.ErrExhaustedCapacity,
		},
		{
			name: "content type mismatch",
			prepare: func(p *purchaseSetup, args *PurchaseArgs) {
				args.ContentIDs = []int64{s.addContent(p.projectID, domain.PlacementTypeArticle, 10)}
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "two content ids",
			prepare: func(p *purchaseSetup, args *PurchaseArgs) {
				args.ContentIDs = append(args.ContentIDs, p.contentID)
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown type",
			prepare: func(_ *purchaseSetup, args *PurchaseArgs) {
				args.Type = "banner"
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "scheduled in the past",
			prepare: func(_ *purchaseSetup, args *PurchaseArgs) {
				args.ScheduledDate = &past
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "scheduled too far",
			prepare: func(_ *purchaseSetup, args *PurchaseArgs) {
				args.ScheduledDate = &tooFar
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "insufficient funds",
			prepare: func(p *purchaseSetup, _ *PurchaseArgs) {
				user := s.store.users[p.userID]
				user.Balance = decimal.RequireFromString("24.99")
				s.store.users[p.userID] = user
			},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
			args := setup.args(domain.PlacementTypeLink)
			t.prepare(&setup, &args)
			balanceBefore := s.store.users[setup.userID].Balance
			placementsBefore := len(s.store.placements)

			_, err := s.service.Purchase(s.T().Context(), args)
			s.Require().ErrorIs(err, t.wantErr)
			s.True(domain.IsBusinessError(err))
			s.True(balanceBefore.Equal(s.store.users[setup.userID].Balance))
			s.Empty(s.userLedger(setup.userID))
			s.Len(s.store.placements, placementsBefore)
		})
	}
}

func (s *BillingServiceTestSuite) TestPurchaseSameProjectTwice() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)

	_, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	_, err = s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().ErrorIs(err, domain.ErrAlreadyPlaced)
	s.decEqual("75", s.store.users[setup.userID].Balance)
}

func (s *BillingServiceTestSuite) TestPurchaseLockTimeoutIsRetryable() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	s.store.lockErrs[setup.userID] = fmt.Errorf("[repository/locking user] %w", domain.ErrConcurrencyTimeout)

	_, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().ErrorIs(err, domain.ErrConcurrencyTimeout)
	s.True(domain.IsRetryable(err))
	s.Empty(s.store.placements)
}

// --- пакетная покупка ---

func (s *BillingServiceTestSuite) TestBatchPurchasePartialFailure() {
	userID := s.addUser("100", "0")
	projectID := s.addProject(userID)
	items := make([]PurchaseItem, 3)
	for i := range items {
		limit := 10
		if i == 1 {
			limit = 0
		}
		items[i] = PurchaseItem{
			ProjectID:  projectID,
			SiteID:     s.addSite(domain.SiteTypeWordPress),
			Type:       domain.PlacementTypeLink,
			ContentIDs: []int64{s.addContent(projectID, domain.PlacementTypeLink, limit)},
		}
	}

	res, err := s.service.BatchPurchase(s.T().Context(), userID, items)
	s.Require().NoError(err)

	s.Equal(2, res.Successful)
	s.Equal(1, res.Failed)
	s.Require().Len(res.Errors, 1)
	s.Equal(1, res.Errors[0].Index)
	s.Require().ErrorIs(res.Errors[0].Err, domain.ErrExhaustedCapacity)
	s.Require().Len(res.Results, 2)
	s.Equal(0, res.Results[0].Index)
	s.Equal(2, res.Results[1].Index)

	s.decEqual("50", res.FinalBalance)
	s.decEqual("50", s.store.users[userID].Balance)
	s.Len(s.userLedger(userID), 2)
	s.assertLedgerConsistent(userID, "100")
}

func (s *BillingServiceTestSuite) TestBatchPurchaseLimits() {
	userID := s.addUser("100", "0")

	_, err := s.service.BatchPurchase(s.T().Context(), userID, nil)
	s.Require().ErrorIs(err, domain.ErrValidation)

	_, err = s.service.BatchPurchase(s.T().Context(), userID, make([]PurchaseItem, MaxBatchPurchase+1))
	s.Require().ErrorIs(err, domain.ErrValidation)
}

func (s *BillingServiceTestSuite) TestBatchPurchaseAbortsOnInfrastructureError() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	s.store.lockErrs[setup.userID] = errors.New("connection reset by peer")

	item := PurchaseItem{
		ProjectID:  setup.projectID,
		SiteID:     setup.siteID,
		Type:       domain.PlacementTypeLink,
		ContentIDs: []int64{setup.contentID},
	}
	res, err := s.service.BatchPurchase(s.T().Context(), setup.userID, []PurchaseItem{item, item})
	s.Require().Error(err)
	s.False(domain.IsBusinessError(err))
	s.Require().NotNil(res)
	s.Equal(0, res.Successful)
	s.Equal(0, res.Failed)
}

// --- удаление и возврат ---

func (s *BillingServiceTestSuite) TestPurchaseThenRefundRoundTrip() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)

	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	refund, err := s.service.DeleteAndRefund(s.T().Context(), purchase.Placement.ID, setup.userID, domain.RoleUser)
	s.Require().NoError(err)

	s.True(refund.Refunded)
	s.True(purchase.PricePaid.Equal(refund.Amount))
	s.decEqual("100", refund.NewBalance)

	user := s.store.users[setup.userID]
	s.decEqual("100", user.Balance)
	s.decEqual("25", user.TotalSpent)
	s.NotContains(s.store.placements, purchase.Placement.ID)
	s.Equal(0, s.store.sites[setup.siteID].UsedLinks)
	s.Equal(0, s.store.contents[setup.contentID].UsageCount)

	ledger := s.userLedger(setup.userID)
	s.Require().Len(ledger, 2)
	s.Equal(domain.TransactionTypeRefund, ledger[1].Type)
	s.Require().NotNil(ledger[1].PlacementID)
	s.Equal(purchase.Placement.ID, *ledger[1].PlacementID)
	s.assertLedgerConsistent(setup.userID, "100")
}

func (s *BillingServiceTestSuite) TestDeleteAndRefundAuthorization() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	stranger := s.addUser("0", "0")
	_, err = s.service.DeleteAndRefund(s.T().Context(), purchase.Placement.ID, stranger, domain.RoleUser)
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
	s.Contains(s.store.placements, purchase.Placement.ID)

	_, err = s.service.DeleteAndRefund(s.T().Context(), 999999, setup.userID, domain.RoleUser)
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)

	admin := s.addUser("0", "0")
	refund, err := s.service.DeleteAndRefund(s.T().Context(), purchase.Placement.ID, admin, domain.RoleAdmin)
	s.Require().NoError(err)
	s.decEqual("100", refund.NewBalance)
	s.decEqual("100", s.store.users[setup.userID].Balance)
	s.decEqual("0", s.store.users[admin].Balance)
}

func (s *BillingServiceTestSuite) TestDeleteArticleCleansUpRemotePost() {
	cases := []struct {
		name      string
		deleteErr error
	}{
		{name: "remote delete ok"},
		{name: "remote delete fails", deleteErr: errors.New("site is down")},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeWordPress)
			site := s.store.sites[setup.siteID]
			s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(7), nil)
			s.publisher.EXPECT().DeletePost(gomock.Any(), site.SiteURL, site.APIKey, int64(7)).Return(t.deleteErr)

			purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeArticle))
			s.Require().NoError(err)

			refund, err := s.service.DeleteAndRefund(s.T().Context(), purchase.Placement.ID, setup.userID, domain.RoleUser)
			s.Require().NoError(err)
			s.decEqual("15", refund.Amount)
			s.decEqual("100", s.store.users[setup.userID].Balance)
		})
	}
}

func (s *BillingServiceTestSuite) TestBatchDeleteAndRefund() {
	userID := s.addUser("100", "0")
	projectID := s.addProject(userID)
	var ids []int64
	for range 2 {
		res, err := s.service.Purchase(s.T().Context(), PurchaseArgs{
			UserID:     userID,
			ProjectID:  projectID,
			SiteID:     s.addSite(domain.SiteTypeWordPress),
			Type:       domain.PlacementTypeLink,
			ContentIDs: []int64{s.addContent(projectID, domain.PlacementTypeLink, 1)},
		})
		s.Require().NoError(err)
		ids = append(ids, res.Placement.ID)
	}
	ids = append(ids, 999999)

	res, err := s.service.BatchDeleteAndRefund(s.T().Context(), userID, domain.RoleUser, ids)
	s.Require().NoError(err)

	s.Equal(2, res.Successful)
	s.Equal(1, res.Failed)
	s.decEqual("50", res.TotalRefunded)
	s.decEqual("100", res.FinalBalance)
	s.Require().Len(res.Errors, 1)
	s.Equal(2, res.Errors[0].Index)
	s.Require().ErrorIs(res.Errors[0].Err, domain.ErrNotFoundOrForbidden)

	_, err = s.service.BatchDeleteAndRefund(s.T().Context(), userID, domain.RoleUser, make([]int64, MaxBatchDelete+1))
	s.Require().ErrorIs(err, domain.ErrValidation)
}

// --- продление ---

func (s *BillingServiceTestSuite) TestRenew() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	res, err := s.service.Renew(s.T().Context(), purchase.Placement.ID, setup.userID)
	s.Require().NoError(err)

	// базовая скидка продления 30% больше скидки уровня Standard.
	s.decEqual("17.5", res.PricePaid)
	s.decEqual("57.5", res.NewBalance)
	s.Equal(s.now.Add(2*year), res.NewExpiryDate)
	s.Equal(1, res.Placement.RenewalCount)
	s.decEqual("42.5", s.store.users[setup.userID].TotalSpent)

	ledger := s.userLedger(setup.userID)
	s.Require().Len(ledger, 2)
	s.Equal(domain.TransactionTypeRenewal, ledger[1].Type)
	s.assertLedgerConsistent(setup.userID, "100")
}

func (s *BillingServiceTestSuite) TestRenewUsesTierDiscountWhenHigher() {
	s.service.conf.Pricing.RenewalBaseDiscount = 10
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	user := s.store.users[setup.userID]
	user.TotalSpent = decimal.NewFromInt(600)
	s.store.users[setup.userID] = user

	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)
	s.decEqual("21.25", purchase.PricePaid)

	res, err := s.service.Renew(s.T().Context(), purchase.Placement.ID, setup.userID)
	s.Require().NoError(err)
	s.decEqual("21.25", res.PricePaid)
}

func (s *BillingServiceTestSuite) TestRenewRejections() {
	setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeStatic)
	article, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeArticle))
	s.Require().NoError(err)

	_, err = s.service.Renew(s.T().Context(), article.Placement.ID, setup.userID)
	s.Require().ErrorIs(err, domain.ErrValidation)

	linkSetup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	link, err := s.service.Purchase(s.T().Context(), linkSetup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	_, err = s.service.Renew(s.T().Context(), link.Placement.ID, setup.userID)
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)

	poorSetup := s.setupPurchase("25", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	poor, err := s.service.Purchase(s.T().Context(), poorSetup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)
	_, err = s.service.Renew(s.T().Context(), poor.Placement.ID, poorSetup.userID)
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
	s.Equal(0, s.store.placements[poor.Placement.ID].RenewalCount)
}

func (s *BillingServiceTestSuite) TestAutoRenew() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	args := setup.args(domain.PlacementTypeLink)
	args.AutoRenewal = true
	purchase, err := s.service.Purchase(s.T().Context(), args)
	s.Require().NoError(err)

	s.now = s.now.Add(year + time.Hour)
	due, err := s.service.DueAutoRenewal(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Require().Len(due, 1)

	res, err := s.service.AutoRenew(s.T().Context(), purchase.Placement.ID)
	s.Require().NoError(err)
	s.Equal(s.now.Add(year), res.NewExpiryDate)

	ledger := s.userLedger(setup.userID)
	s.Require().Len(ledger, 2)
	s.Equal(domain.TransactionTypeAutoRenewal, ledger[1].Type)
}

func (s *BillingServiceTestSuite) TestAutoRenewWithoutFundsExpires() {
	setup := s.setupPurchase("25", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	args := setup.args(domain.PlacementTypeLink)
	args.AutoRenewal = true
	purchase, err := s.service.Purchase(s.T().Context(), args)
	s.Require().NoError(err)

	s.now = s.now.Add(year + time.Hour)
	_, err = s.service.AutoRenew(s.T().Context(), purchase.Placement.ID)
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)

	placement := s.store.placements[purchase.Placement.ID]
	s.Equal(domain.PlacementStatusExpired, placement.Status)
	s.Equal(0, s.store.sites[setup.siteID].UsedLinks)
	s.Len(s.userLedger(setup.userID), 1)
}

func (s *BillingServiceTestSuite) TestRenewExpiredPlacementReservesSlot() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	s.now = s.now.Add(year + time.Hour)
	expired, err := s.service.ExpirePlacement(s.T().Context(), purchase.Placement.ID)
	s.Require().NoError(err)
	s.Equal(domain.PlacementStatusExpired, expired.Status)
	s.Equal(0, s.store.sites[setup.siteID].UsedLinks)

	res, err := s.service.Renew(s.T().Context(), purchase.Placement.ID, setup.userID)
	s.Require().NoError(err)
	s.Equal(domain.PlacementStatusPlaced, res.Placement.Status)
	s.Equal(s.now.Add(year), res.NewExpiryDate)
	s.Equal(1, s.store.sites[setup.siteID].UsedLinks)
}

func (s *BillingServiceTestSuite) TestSetAutoRenewal() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	placement, err := s.service.SetAutoRenewal(s.T().Context(), purchase.Placement.ID, setup.userID, true)
	s.Require().NoError(err)
	s.True(placement.AutoRenewal)
	s.True(s.store.placements[purchase.Placement.ID].AutoRenewal)

	_, err = s.service.SetAutoRenewal(s.T().Context(), purchase.Placement.ID, s.addUser("0", "0"), false)
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
}

// --- отложенная публикация и истечение ---

func (s *BillingServiceTestSuite) scheduledArticle() (purchaseSetup, *PurchaseResult) {
	setup := s.setupPurchase("100", domain.PlacementTypeArticle, domain.SiteTypeWordPress)
	args := setup.args(domain.PlacementTypeArticle)
	publishAt := s.now.Add(24 * time.Hour)
	args.ScheduledDate = &publishAt
	res, err := s.service.Purchase(s.T().Context(), args)
	s.Require().NoError(err)
	s.now = s.now.Add(25 * time.Hour)
	return setup, res
}

func (s *BillingServiceTestSuite) TestPublishScheduled() {
	setup, purchase := s.scheduledArticle()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(5), nil)

	due, err := s.service.DueScheduled(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Require().Len(due, 1)

	res, err := s.service.PublishScheduled(s.T().Context(), purchase.Placement.ID)
	s.Require().NoError(err)
	s.False(res.Failed)
	s.Equal(domain.PlacementStatusPlaced, res.Placement.Status)
	s.Require().NotNil(res.Placement.WordPressPostID)
	s.decEqual("85", s.store.users[setup.userID].Balance)

	_, err = s.service.PublishScheduled(s.T().Context(), purchase.Placement.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidState)
}

func (s *BillingServiceTestSuite) TestPublishScheduledFailureRefunds() {
	setup, purchase := s.scheduledArticle()
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("timeout"))

	res, err := s.service.PublishScheduled(s.T().Context(), purchase.Placement.ID)
	s.Require().NoError(err)
	s.True(res.Failed)
	s.decEqual("15", res.Refunded)
	s.Equal(domain.PlacementStatusFailed, s.store.placements[purchase.Placement.ID].Status)
	s.decEqual("100", s.store.users[setup.userID].Balance)
	s.Equal(0, s.store.sites[setup.siteID].UsedArticles)
	s.assertLedgerConsistent(setup.userID, "100")
}

func (s *BillingServiceTestSuite) TestDeleteFailedPlacementDoesNotRefundTwice() {
	setup, purchase := s.scheduledArticle()
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("timeout"))

	_, err := s.service.PublishScheduled(s.T().Context(), purchase.Placement.ID)
	s.Require().NoError(err)
	s.decEqual("100", s.store.users[setup.userID].Balance)

	res, err := s.service.DeleteAndRefund(s.T().Context(), purchase.Placement.ID, setup.userID, domain.RoleUser)
	s.Require().NoError(err)
	s.False(res.Refunded)
	s.decEqual("0", res.Amount)
	s.decEqual("100", res.NewBalance)
	s.decEqual("100", s.store.users[setup.userID].Balance)
	s.NotContains(s.store.placements, purchase.Placement.ID)
	s.Equal(0, s.store.sites[setup.siteID].UsedArticles)
	s.assertLedgerConsistent(setup.userID, "100")
}

func (s *BillingServiceTestSuite) TestExpirePlacementBeforeExpiry() {
	setup := s.setupPurchase("100", domain.PlacementTypeLink, domain.SiteTypeWordPress)
	purchase, err := s.service.Purchase(s.T().Context(), setup.args(domain.PlacementTypeLink))
	s.Require().NoError(err)

	_, err = s.service.ExpirePlacement(s.T().Context(), purchase.Placement.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidState)

	due, err := s.service.DueExpiry(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Empty(due)
}

// --- баланс ---

func (s *BillingServiceTestSuite) TestDeposit() {
	userID := s.addUser("0", "0")

	res, err := s.service.Deposit(s.T().Context(), userID, decimal.RequireFromString("100.50"), "")
	s.Require().NoError(err)
	s.decEqual("100.5", res.User.Balance)
	s.Equal(domain.TransactionTypeDeposit, res.Entry.Type)
	s.Equal("Balance deposit", res.Entry.Description)
	s.decEqual("0", s.store.users[userID].TotalSpent)

	for _, amount := range []string{"0", "-5", "10000.01", "1.001"} {
		_, err = s.service.Deposit(s.T().Context(), userID, decimal.RequireFromString(amount), "")
		s.Require().ErrorIs(err, domain.ErrValidation, "amount %s", amount)
	}

	_, err = s.service.Deposit(s.T().Context(), userID, decimal.NewFromInt(10000), "")
	s.Require().NoError(err)

	_, err = s.service.Deposit(s.T().Context(), 999999, decimal.NewFromInt(10), "")
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
	s.assertLedgerConsistent(userID, "0")
}

func (s *BillingServiceTestSuite) TestAdjustBalance() {
	userID := s.addUser("20", "0")

	_, err := s.service.AdjustBalance(s.T().Context(), userID, decimal.NewFromInt(-21), "chargeback")
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)

	_, err = s.service.AdjustBalance(s.T().Context(), userID, decimal.NewFromInt(-5), "")
	s.Require().ErrorIs(err, domain.ErrValidation)

	res, err := s.service.AdjustBalance(s.T().Context(), userID, decimal.NewFromInt(-5), "chargeback")
	s.Require().NoError(err)
	s.decEqual("15", res.User.Balance)
	s.Equal(domain.TransactionTypeAdjustment, res.Entry.Type)
	s.decEqual("-5", res.Entry.Amount)
	s.assertLedgerConsistent(userID, "20")
}

func (s *BillingServiceTestSuite) TestGetBalance() {
	userID := s.addUser("10", "150")

	info, err := s.service.GetBalance(s.T().Context(), userID)
	s.Require().NoError(err)
	s.Equal(10, info.DiscountPercent)
	s.Equal("Bronze", info.TierName)
	s.Require().NotNil(info.NextTier)
	s.Equal("Silver", info.NextTier.Name)
	s.decEqual("350", info.NextTier.Remaining)

	_, err = s.service.GetBalance(s.T().Context(), 999999)
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
}

func (s *BillingServiceTestSuite) TestListTransactions() {
	userID := s.addUser("0", "0")
	for i := 1; i <= 3; i++ {
		_, err := s.service.Deposit(s.T().Context(), userID, decimal.NewFromInt(int64(i)), "")
		s.Require().NoError(err)
	}

	entries, err := s.service.ListTransactions(s.T().Context(), userID, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.decEqual("3", entries[0].Amount)
	s.decEqual("2", entries[1].Amount)
}
