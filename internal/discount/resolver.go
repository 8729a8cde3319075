// Package discount определяет персональную скидку пользователя по сумме его покупок за все время.
package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// step минимальный шаг денежной суммы. Границы соседних уровней отличаются ровно на него.
var step = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Tier уровень скидки. Max == nil означает уровень без верхней границы.
type Tier struct {
	Min      decimal.Decimal
	Max      *decimal.Decimal
	Discount int
	Name     string
}

func (t Tier) contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.Min) {
		return false
	}
	return t.Max == nil || amount.LessThanOrEqual(*t.Max)
}

type Result struct {
	DiscountPercent int
	TierName        string
}

// DefaultTiers уровни скидок по умолчанию.
func DefaultTiers() []Tier {
	return []Tier{
		{Min: decimal.Zero, Max: ptr("99.99"), Discount: 0, Name: "Standard"},
		{Min: decimal.NewFromInt(100), Max: ptr("499.99"), Discount: 10, Name: "Bronze"},
		{Min: decimal.NewFromInt(500), Max: ptr("999.99"), Discount: 15, Name: "Silver"},
		{Min: decimal.NewFromInt(1000), Max: ptr("2499.99"), Discount: 20, Name: "Gold"},
		{Min: decimal.NewFromInt(2500), Max: ptr("4999.99"), Discount: 25, Name: "Platinum"},
		{Min: decimal.NewFromInt(5000), Max: nil, Discount: 30, Name: "Diamond"},
	}
}

var (
	ErrNoTiers         = errors.New("no discount tiers")
	ErrTiersNotOrdered = errors.New("discount tiers are not contiguous")
	ErrTopTierBounded  = errors.New("top discount tier must be unbounded")
)

// Resolver сопоставляет сумму покупок уровню скидки. Неизменяем после создания, безопасен для
// конкурентного использования.
type Resolver struct {
	tiers []Tier
}

// NewResolver проверяет, что уровни покрывают [0, ∞) без пропусков и пересечений.
func NewResolver(tiers []Tier) (*Resolver, error) {
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}
	if !tiers[0].Min.IsZero() {
		return nil, fmt.Errorf("%w: first tier starts at %s", ErrTiersNotOrdered, tiers[0].Min)
	}
	for i := 0; i < len(tiers)-1; i++ {
		cur, next := tiers[i], tiers[i+1]
		if cur.Max == nil {
			return nil, fmt.Errorf("%w: tier %q is unbounded but not last", ErrTopTierBounded, cur.Name)
		}
		if cur.Max.LessThan(cur.Min) {
			return nil, fmt.Errorf("%w: tier %q has max below min", ErrTiersNotOrdered, cur.Name)
		}
		if !cur.Max.Add(step).Equal(next.Min) {
			return nil, fmt.Errorf("%w: gap or overlap between %q and %q", ErrTiersNotOrdered, cur.Name, next.Name)
		}
	}
	if tiers[len(tiers)-1].Max != nil {
		return nil, ErrTopTierBounded
	}

	copied := make([]Tier, len(tiers))
	copy(copied, tiers)
	return &Resolver{tiers: copied}, nil
}

// MustNewResolver как NewResolver, но паникует на некорректной конфигурации.
func MustNewResolver(tiers []Tier) *Resolver {
	r, err := NewResolver(tiers)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve возвращает скидку для суммы покупок. Отрицательная сумма трактуется как ноль.
func (r *Resolver) Resolve(totalSpent decimal.Decimal) Result {
	t := r.tierFor(totalSpent)
	return Result{DiscountPercent: t.Discount, TierName: t.Name}
}

// NextTier возвращает следующий уровень и сумму, которую осталось потратить до него.
// Для максимального уровня ok == false.
func (r *Resolver) NextTier(totalSpent decimal.Decimal) (next Tier, remaining decimal.Decimal, ok bool) {
	i := r.indexFor(totalSpent)
	if i+1 >= len(r.tiers) {
		return Tier{}, decimal.Zero, false
	}
	next = r.tiers[i+1]
	return next, next.Min.Sub(clamp(totalSpent)), true
}

func (r *Resolver) Tiers() []Tier {
	copied := make([]Tier, len(r.tiers))
	copy(copied, r.tiers)
	return copied
}

func (r *Resolver) tierFor(amount decimal.Decimal) Tier {
	return r.tiers[r.indexFor(amount)]
}

func (r *Resolver) indexFor(amount decimal.Decimal) int {
	amount = clamp(amount)
	for i, t := range r.tiers {
		if t.contains(amount) {
			return i
		}
		// сумма с долями цента может попасть между max и min соседних уровней.
		if t.Max != nil && amount.GreaterThan(*t.Max) && amount.LessThan(t.Max.Add(step)) {
			return i
		}
	}
	return len(r.tiers) - 1
}

// ApplyDiscount возвращает цену со скидкой percent, округленную до центов.
func ApplyDiscount(price decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return price.Round(2)
	}
	if percent >= 100 {
		return decimal.Zero
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(percent))).Div(hundred)
	return price.Mul(factor).Round(2)
}

func clamp(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

func ptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
