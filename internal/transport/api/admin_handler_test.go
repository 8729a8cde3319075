package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

// Административные и реферальные маршруты проверяются на том же роутере.

func (s *BillingHandlerTestSuite) TestAdminRoutesRequireAdmin() {
	res := s.request(http.MethodPost, RouteGroup+"/admin/referral/withdrawals/5/approve", s.userToken, nil)
	s.Equal(http.StatusForbidden, res.StatusCode)

	res = s.request(http.MethodPost, RouteGroup+"/admin/users/5/adjust", s.userToken,
		gin.H{"delta": 10, "description": "manual"})
	s.Equal(http.StatusForbidden, res.StatusCode)
}

func (s *BillingHandlerTestSuite) TestApproveAndReject() {
	now := time.Now()
	s.mockReferral.EXPECT().ApproveWithdrawal(gomock.Any(), int64(5), int64(1)).Return(&domain.ReferralWithdrawal{
		ID:          5,
		Amount:      decimal.NewFromInt(250),
		Status:      domain.WithdrawalStatusApproved,
		ProcessedAt: &now,
	}, nil)
	s.mockReferral.EXPECT().RejectWithdrawal(gomock.Any(), int64(6), int64(1), "wrong wallet").
		Return(&domain.ReferralWithdrawal{ID: 6, Status: domain.WithdrawalStatusRejected}, nil)
	s.mockReferral.EXPECT().ApproveWithdrawal(gomock.Any(), int64(6), int64(1)).Return(nil, domain.ErrInvalidState)

	res := s.request(http.MethodPost, RouteGroup+"/admin/referral/withdrawals/5/approve", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	var body map[string]any
	s.decode(res, &body)
	s.Equal("approved", body["status"])

	res = s.request(http.MethodPost, RouteGroup+"/admin/referral/withdrawals/6/reject", s.adminToken,
		gin.H{"reason": "wrong wallet"})
	s.Equal(http.StatusOK, res.StatusCode)

	res = s.request(http.MethodPost, RouteGroup+"/admin/referral/withdrawals/6/approve", s.adminToken, nil)
	s.Equal(http.StatusConflict, res.StatusCode)
}

func (s *BillingHandlerTestSuite) TestAdjust() {
	delta := decimal.NewFromInt(-15)
	s.mockBilling.EXPECT().AdjustBalance(gomock.Any(), int64(5), delta, "chargeback").Return(nil, domain.ErrInsufficientFunds)

	res := s.request(http.MethodPost, RouteGroup+"/admin/users/5/adjust", s.adminToken,
		gin.H{"delta": -15, "description": "chargeback"})
	s.Equal(http.StatusPaymentRequired, res.StatusCode)

	res = s.request(http.MethodPost, RouteGroup+"/admin/users/5/adjust", s.adminToken,
		gin.H{"delta": -15})
	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
}

func (s *BillingHandlerTestSuite) TestReferralRoutes() {
	amount := decimal.NewFromInt(300)
	s.mockReferral.EXPECT().WithdrawToBalance(gomock.Any(), s.userID, nil).Return(nil, domain.ErrInsufficientFunds)
	s.mockReferral.EXPECT().RequestWalletWithdrawal(gomock.Any(), s.userID, amount, "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE").
		Return(&domain.ReferralWithdrawal{ID: 8, Amount: amount, Status: domain.WithdrawalStatusPending}, nil)
	s.mockReferral.EXPECT().ListWithdrawals(gomock.Any(), s.userID).Return([]domain.ReferralWithdrawal{{ID: 8}}, nil)

	res := s.request(http.MethodPost, RouteGroup+ReferralWithdrawRoute, s.userToken, nil)
	s.Equal(http.StatusPaymentRequired, res.StatusCode)

	res = s.request(http.MethodPost, RouteGroup+WalletWithdrawRoute, s.userToken,
		gin.H{"amount": 300, "walletAddress": "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE"})
	s.Equal(http.StatusCreated, res.StatusCode)

	res = s.request(http.MethodGet, RouteGroup+WithdrawalsRoute, s.userToken, nil)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	var list []map[string]any
	s.decode(res, &list)
	s.Len(list, 1)
}
