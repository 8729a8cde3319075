package domain

type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypePurchase           TransactionType = "purchase"
	TransactionTypeRenewal            TransactionType = "renewal"
	TransactionTypeAutoRenewal        TransactionType = "auto_renewal"
	TransactionTypeRefund             TransactionType = "refund"
	TransactionTypeReferralWithdrawal TransactionType = "referral_withdrawal"
	TransactionTypeAdjustment         TransactionType = "adjustment"
)

// IsSpending типы списаний, увеличивающие total_spent.
func (t TransactionType) IsSpending() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeRenewal, TransactionTypeAutoRenewal:
		return true
	default:
		return false
	}
}

type PlacementType string

const (
	PlacementTypeLink    PlacementType = "link"
	PlacementTypeArticle PlacementType = "article"
)

func (t PlacementType) Valid() bool {
	return t == PlacementTypeLink || t == PlacementTypeArticle
}

type PlacementStatus string

const (
	PlacementStatusPending   PlacementStatus = "pending"
	PlacementStatusScheduled PlacementStatus = "scheduled"
	PlacementStatusPlaced    PlacementStatus = "placed"
	PlacementStatusExpired   PlacementStatus = "expired"
	PlacementStatusFailed    PlacementStatus = "failed"
	PlacementStatusCancelled PlacementStatus = "cancelled"
)

type SiteType string

const (
	SiteTypeWordPress SiteType = "wordpress"
	SiteTypeStatic    SiteType = "static_php"
)

type WithdrawalStatus string

const (
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

type ActorRole string

const (
	RoleUser  ActorRole = "user"
	RoleAdmin ActorRole = "admin"
)
