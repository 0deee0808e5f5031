package invoices

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Invoice amounts are integer minor units of Currency.
type Invoice struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	BranchID    string     `json:"branchId"`
	PatientName string     `json:"patientName"`
	Description string     `json:"description,omitempty"`
	AmountMinor int64      `json:"amountMinor"`
	Currency    string     `json:"currency"`
	Status      Status     `json:"status"`
	IssuedBy    string     `json:"issuedBy"`
	PaidBy      string     `json:"paidBy,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Number      string `json:"number" validate:"omitempty,max=32"`
	BranchID    string `json:"branchId" validate:"required,uuid"`
	PatientName string `json:"patientName" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
	AmountMinor int64  `json:"amountMinor" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3,uppercase"`
}

type ListFilter struct {
	Status   Status `form:"status" validate:"omitempty,oneof=pending paid"`
	BranchID string `form:"branchId" validate:"omitempty,uuid"`
	// IssuedBy narrows to one issuer; handlers set it for callers without the "all" grant.
	IssuedBy string `form:"-"`
}

type Stats struct {
	Total        int64            `json:"total"`
	ByStatus     map[Status]int64 `json:"byStatus"`
	RevenueMinor int64            `json:"revenueMinor"`
	PendingMinor int64            `json:"pendingMinor"`
}
