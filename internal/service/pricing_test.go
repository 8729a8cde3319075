package service

import (
	"testing"

	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPricingQuote(t *testing.T) {
	resolver := discount.MustNewResolver(discount.DefaultTiers())
	pricing := DefaultPricing()

	cases := []struct {
		name         string
		spentBefore  string
		placement    domain.PlacementType
		wantDiscount int
		wantFinal    string
		wantRenewal  string
	}{
		{name: "new user link", spentBefore: "0", placement: domain.PlacementTypeLink, wantFinal: "25", wantRenewal: "17.5"},
		{name: "just below bronze", spentBefore: "99.99", placement: domain.PlacementTypeLink, wantFinal: "25", wantRenewal: "17.5"},
		{
			name: "bronze link", spentBefore: "100", placement: domain.PlacementTypeLink,
			wantDiscount: 10, wantFinal: "22.5", wantRenewal: "17.5",
		},
		{
			name: "silver article", spentBefore: "500", placement: domain.PlacementTypeArticle,
			wantDiscount: 15, wantFinal: "12.75", wantRenewal: "0",
		},
		{
			name: "diamond link", spentBefore: "5000", placement: domain.PlacementTypeLink,
			wantDiscount: 30, wantFinal: "17.5", wantRenewal: "17.5",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			q := pricing.Quote(resolver, decimal.RequireFromString(tt.spentBefore), tt.placement)
			assert.Equal(t, tt.wantDiscount, q.DiscountPercent)
			assert.True(t, pricing.Base(tt.placement).Equal(q.OriginalPrice))
			assert.True(t, decimal.RequireFromString(tt.wantFinal).Equal(q.FinalPrice), "final %s", q.FinalPrice)
			assert.True(t, decimal.RequireFromString(tt.wantRenewal).Equal(q.RenewalPrice), "renewal %s", q.RenewalPrice)
		})
	}
}

func TestRenewalPriceTakesLargerDiscount(t *testing.T) {
	pricing := Pricing{LinkPrice: decimal.NewFromInt(25), RenewalBaseDiscount: 10}

	assert.True(t, decimal.RequireFromString("22.5").Equal(pricing.RenewalPrice(0)))
	assert.True(t, decimal.RequireFromString("18.75").Equal(pricing.RenewalPrice(25)))
}
