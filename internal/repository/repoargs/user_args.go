package repoargs

import "github.com/shopspring/decimal"

// UpdateUserBalance новое состояние денежных полей пользователя. Значения рассчитываются сервисным слоем
// под блокировкой строки.
type UpdateUserBalance struct {
	UserID          int64
	Balance         decimal.Decimal
	TotalSpent      decimal.Decimal
	CurrentDiscount int
}

type UpdateReferralBalance struct {
	UserID          int64
	ReferralBalance decimal.Decimal
}
