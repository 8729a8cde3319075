package service

import (
	"github.com/fsdevblog/placement-billing/internal/discount"
	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/shopspring/decimal"
)

// Pricing базовые цены размещений.
type Pricing struct {
	LinkPrice           decimal.Decimal
	ArticlePrice        decimal.Decimal
	RenewalBaseDiscount int
}

func DefaultPricing() Pricing {
	return Pricing{
		LinkPrice:           decimal.NewFromInt(25),
		ArticlePrice:        decimal.NewFromInt(15),
		RenewalBaseDiscount: 30,
	}
}

func (p Pricing) Base(t domain.PlacementType) decimal.Decimal {
	if t == domain.PlacementTypeArticle {
		return p.ArticlePrice
	}
	return p.LinkPrice
}

// RenewalPrice цена продления ссылки: базовая цена с большей из двух скидок, базовой скидки продления
// и персональной скидки пользователя.
func (p Pricing) RenewalPrice(tierDiscount int) decimal.Decimal {
	return discount.ApplyDiscount(p.LinkPrice, max(p.RenewalBaseDiscount, tierDiscount))
}

// Quote рассчитывает цену покупки. Скидка определяется суммой покупок до текущей покупки: потраченное
// в этой покупке влияет только на следующие.
func (p Pricing) Quote(resolver *discount.Resolver, spentBefore decimal.Decimal, t domain.PlacementType) priceQuote {
	tier := resolver.Resolve(spentBefore)
	base := p.Base(t)
	quote := priceQuote{
		OriginalPrice:   base,
		DiscountPercent: tier.DiscountPercent,
		FinalPrice:      discount.ApplyDiscount(base, tier.DiscountPercent),
	}
	if t == domain.PlacementTypeLink {
		quote.RenewalPrice = p.RenewalPrice(tier.DiscountPercent)
	}
	return quote
}

// priceQuote цена покупки, рассчитанная до списания.
type priceQuote struct {
	OriginalPrice   decimal.Decimal
	DiscountPercent int
	FinalPrice      decimal.Decimal
	RenewalPrice    decimal.Decimal
}
