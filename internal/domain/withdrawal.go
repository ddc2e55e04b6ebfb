package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 申请类状态（提现 / 套餐申请共用）
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

var RequestStatuses = []string{RequestPending, RequestApproved, RequestRejected}

type WithdrawalRequest struct {
	ID          string          `json:"_id"`
	AffiliateID string          `json:"affiliateId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	WalletCode  string          `json:"walletCode,omitempty"`
	QRCodeURL   string          `json:"qrCodeUrl,omitempty"`
	Status      string          `json:"status,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
}
