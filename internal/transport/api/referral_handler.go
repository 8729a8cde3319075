package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/placement-billing/internal/transport/api/middlewares"
	"github.com/fsdevblog/placement-billing/internal/transport/api/response"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReferralHandler struct {
	svs ReferralServicer
}

func NewReferralHandler(svs ReferralServicer) *ReferralHandler {
	return &ReferralHandler{svs: svs}
}

type ReferralWithdrawParams struct {
	// Amount nil означает вывод всего реферального баланса.
	Amount *decimal.Decimal `json:"amount"`
}

// Withdraw POST RouteGroup + ReferralWithdrawRoute. Перевод реферальных средств на основной баланс.
func (h *ReferralHandler) Withdraw(c *gin.Context) {
	var params ReferralWithdrawParams
	// тело необязательно.
	if c.Request.ContentLength != 0 && !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.svs.WithdrawToBalance(reqCtx, middlewares.CurrentUserID(c), params.Amount)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewReferralWithdraw(result))
}

type WalletWithdrawParams struct {
	Amount        decimal.Decimal `binding:"required,gt=0"             json:"amount"`
	WalletAddress string          `binding:"required,max_bytes=64"     json:"walletAddress"`
}

// WalletWithdraw POST RouteGroup + WalletWithdrawRoute. Заявка на вывод в кошелек, ждет решения администратора.
func (h *ReferralHandler) WalletWithdraw(c *gin.Context) {
	var params WalletWithdrawParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.svs.RequestWalletWithdrawal(
		reqCtx,
		middlewares.CurrentUserID(c),
		params.Amount,
		params.WalletAddress,
	)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewWithdrawal(withdrawal))
}

// Withdrawals GET RouteGroup + WithdrawalsRoute.
func (h *ReferralHandler) Withdrawals(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawals, err := h.svs.ListWithdrawals(reqCtx, middlewares.CurrentUserID(c))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewWithdrawals(withdrawals))
}
