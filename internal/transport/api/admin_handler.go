package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/placement-billing/internal/transport/api/middlewares"
	"github.com/fsdevblog/placement-billing/internal/transport/api/response"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminHandler операции администратора. Роль проверяет middlewares.AdminRequired.
type AdminHandler struct {
	billing  BillingServicer
	referral ReferralServicer
}

func NewAdminHandler(billing BillingServicer, referral ReferralServicer) *AdminHandler {
	return &AdminHandler{billing: billing, referral: referral}
}

// ApproveWithdrawal POST RouteGroup + ApproveWithdrawalRoute.
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	withdrawalID, ok := paramID(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.referral.ApproveWithdrawal(reqCtx, withdrawalID, middlewares.CurrentUserID(c))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewWithdrawal(withdrawal))
}

type RejectWithdrawalParams struct {
	Reason string `binding:"max_bytes=500" json:"reason"`
}

// RejectWithdrawal POST RouteGroup + RejectWithdrawalRoute.
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	withdrawalID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params RejectWithdrawalParams
	if c.Request.ContentLength != 0 && !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.referral.RejectWithdrawal(reqCtx, withdrawalID, middlewares.CurrentUserID(c), params.Reason)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewWithdrawal(withdrawal))
}

type AdjustParams struct {
	Delta       decimal.Decimal `binding:"required"               json:"delta"`
	Description string          `binding:"required,max_bytes=255" json:"description"`
}

// Adjust POST RouteGroup + AdjustBalanceRoute. Знаковая ручная корректировка баланса пользователя.
func (h *AdminHandler) Adjust(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params AdjustParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	change, err := h.billing.AdjustBalance(reqCtx, userID, params.Delta, params.Description)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBalanceChange(change))
}
