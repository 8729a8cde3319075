package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/fsdevblog/placement-billing/internal/transport/api/middlewares"
	"github.com/fsdevblog/placement-billing/internal/transport/api/response"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BillingHandler struct {
	svs BillingServicer
}

func NewBillingHandler(svs BillingServicer) *BillingHandler {
	return &BillingHandler{svs: svs}
}

// Balance GET RouteGroup + BalanceRoute.
func (h *BillingHandler) Balance(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	info, err := h.svs.GetBalance(reqCtx, middlewares.CurrentUserID(c))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBalance(info))
}

type DiscountResponse struct {
	CurrentDiscount int                `json:"currentDiscount"`
	TierName        string             `json:"tierName"`
	TotalSpent      float64            `json:"totalSpent"`
	NextTier        *response.NextTier `json:"nextTier,omitempty"`
	Tiers           []response.Tier    `json:"tiers"`
}

// Discount GET RouteGroup + DiscountRoute. Текущий уровень скидки и таблица уровней.
func (h *BillingHandler) Discount(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	info, err := h.svs.GetBalance(reqCtx, middlewares.CurrentUserID(c))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	balance := response.NewBalance(info)
	c.JSON(http.StatusOK, DiscountResponse{
		CurrentDiscount: balance.CurrentDiscount,
		TierName:        balance.TierName,
		TotalSpent:      balance.TotalSpent,
		NextTier:        balance.NextTier,
		Tiers:           response.NewTiers(h.svs.Tiers()),
	})
}

// Transactions GET RouteGroup + TransactionsRoute?limit=&offset=.
func (h *BillingHandler) Transactions(c *gin.Context) {
	limit, ok := queryUint(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryUint(c, "offset")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := h.svs.ListTransactions(reqCtx, middlewares.CurrentUserID(c), limit, offset)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewTransactions(entries))
}

type DepositParams struct {
	Amount      decimal.Decimal `binding:"required,gt=0"  json:"amount"`
	Description string          `binding:"max_bytes=255" json:"description"`
}

// Deposit POST RouteGroup + DepositRoute.
func (h *BillingHandler) Deposit(c *gin.Context) {
	var params DepositParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	change, err := h.svs.Deposit(reqCtx, middlewares.CurrentUserID(c), params.Amount, params.Description)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBalanceChange(change))
}

type PurchaseParams struct {
	ProjectID     int64      `binding:"required,gt=0"              json:"projectId"`
	SiteID        int64      `binding:"required,gt=0"              json:"siteId"`
	Type          string     `binding:"required,oneof=link article" json:"type"`
	ContentIDs    []int64    `binding:"required,min=1"             json:"contentIds"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	AutoRenewal   bool       `json:"autoRenewal"`
}

func (p PurchaseParams) item() service.PurchaseItem {
	return service.PurchaseItem{
		ProjectID:     p.ProjectID,
		SiteID:        p.SiteID,
		Type:          domain.PlacementType(p.Type),
		ContentIDs:    p.ContentIDs,
		ScheduledDate: p.ScheduledDate,
		AutoRenewal:   p.AutoRenewal,
	}
}

// Purchase POST RouteGroup + PurchaseRoute.
func (h *BillingHandler) Purchase(c *gin.Context) {
	var params PurchaseParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, PurchaseServiceTimeout)
	defer cancel()

	item := params.item()
	result, err := h.svs.Purchase(reqCtx, service.PurchaseArgs{
		UserID:        middlewares.CurrentUserID(c),
		ProjectID:     item.ProjectID,
		SiteID:        item.SiteID,
		Type:          item.Type,
		ContentIDs:    item.ContentIDs,
		ScheduledDate: item.ScheduledDate,
		AutoRenewal:   item.AutoRenewal,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewPurchase(result))
}

type BatchPurchaseParams struct {
	Items []PurchaseParams `binding:"required,min=1,max=1000,dive" json:"items"`
}

func (p BatchPurchaseParams) items() []service.PurchaseItem {
	items := make([]service.PurchaseItem, len(p.Items))
	for i, item := range p.Items {
		items[i] = item.item()
	}
	return items
}

// BatchPurchase POST RouteGroup + BatchPurchaseRoute. Ошибки отдельных элементов возвращаются в теле
// ответа со статусом 200. Инфраструктурная ошибка прерывает пакет.
func (h *BillingHandler) BatchPurchase(c *gin.Context) {
	var params BatchPurchaseParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, BatchServiceTimeout)
	defer cancel()

	result, err := h.svs.BatchPurchase(reqCtx, middlewares.CurrentUserID(c), params.items())
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBatchPurchase(result))
}

// Renew POST RouteGroup + RenewRoute.
func (h *BillingHandler) Renew(c *gin.Context) {
	placementID, ok := paramID(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.svs.Renew(reqCtx, placementID, middlewares.CurrentUserID(c))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewRenew(result))
}

type AutoRenewalParams struct {
	Enabled *bool `binding:"required" json:"enabled"`
}

// AutoRenewal PATCH RouteGroup + AutoRenewalRoute.
func (h *BillingHandler) AutoRenewal(c *gin.Context) {
	placementID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params AutoRenewalParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	placement, err := h.svs.SetAutoRenewal(reqCtx, placementID, middlewares.CurrentUserID(c), *params.Enabled)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPlacement(placement))
}

// Delete DELETE RouteGroup + PlacementRoute. Администратор может удалить любое размещение.
func (h *BillingHandler) Delete(c *gin.Context) {
	placementID, ok := paramID(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.svs.DeleteAndRefund(reqCtx, placementID, middlewares.CurrentUserID(c), middlewares.CurrentRole(c))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewRefund(result))
}

type BatchDeleteParams struct {
	PlacementIDs []int64 `binding:"required,min=1,max=100,dive,gt=0" json:"placementIds"`
}

// BatchDelete POST RouteGroup + BatchDeleteRoute.
func (h *BillingHandler) BatchDelete(c *gin.Context) {
	var params BatchDeleteParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, BatchServiceTimeout)
	defer cancel()

	result, err := h.svs.BatchDeleteAndRefund(
		reqCtx,
		middlewares.CurrentUserID(c),
		middlewares.CurrentRole(c),
		params.PlacementIDs,
	)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewBatchRefund(result))
}
