package users

import "time"

// User is a staff account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	BranchID     string    `json:"branchId,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Role     string `json:"role" validate:"required,oneof=ADMIN MANAGER DOCTOR RECEPTIONIST ACCOUNTANT"`
	BranchID string `json:"branchId" validate:"omitempty,uuid"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN MANAGER DOCTOR RECEPTIONIST ACCOUNTANT"`
	BranchID *string `json:"branchId" validate:"omitempty,uuid"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type ListFilter struct {
	Role     string `form:"role" validate:"omitempty,oneof=ADMIN MANAGER DOCTOR RECEPTIONIST ACCOUNTANT"`
	BranchID string `form:"branchId" validate:"omitempty,uuid"`
	Active   *bool  `form:"active"`
}

type Counts struct {
	Total  int64            `json:"total"`
	Active int64            `json:"active"`
	ByRole map[string]int64 `json:"byRole"`
}
