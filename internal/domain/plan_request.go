package domain

import "github.com/shopspring/decimal"

// PlanRequest 用户的套餐购买/升级申请
type PlanRequest struct {
	ID       string      `json:"_id"`
	Type     string      `json:"type,omitempty"`
	Status   string      `json:"status,omitempty"`
	UserData RequestUser `json:"userData"`
	PlanData PlanData    `json:"planData"`
}

type RequestUser struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type PlanData struct {
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
}

func (r PlanRequest) FullName() string { return r.UserData.FirstName + " " + r.UserData.LastName }
