package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 用户状态
const (
	UserPending  = "pending"
	UserActive   = "active"
	UserInactive = "inactive"
)

var UserStatuses = []string{UserPending, UserActive, UserInactive}

type User struct {
	ID        string          `json:"_id"`
	AccountID string          `json:"accountId,omitempty"`
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Fee       decimal.Decimal `json:"fee"`
	Status    string          `json:"status,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// Admin 设置页展示的管理员资料
type Admin struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
