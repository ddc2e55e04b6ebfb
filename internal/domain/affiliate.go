package domain

import "github.com/shopspring/decimal"

// Affiliate 推广返利账户（只读）
type Affiliate struct {
	ID               string          `json:"_id"`
	FirstName        string          `json:"firstName,omitempty"`
	LastName         string          `json:"lastName,omitempty"`
	Email            string          `json:"email,omitempty"`
	ReferralCode     string          `json:"referralCode,omitempty"`
	AffiliateBalance decimal.Decimal `json:"affiliateBalance"`
	Referrals        []Referral      `json:"referrals,omitempty"`
}

type Referral struct {
	ID        string `json:"_id,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (a Affiliate) FullName() string { return a.FirstName + " " + a.LastName }
