// Package withdrawals 提现申请的两个页面：客户提现（下拉改状态）和推广提现（通过/驳回 + 编辑金额）
package withdrawals

import (
	"net/http"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/transport/http/handler"
)

const (
	CustomerName  = "customer-withdrawals"
	AffiliateName = "affiliate-withdrawals"
)

var (
	listRoute   = remote.Route{Name: "withdrawal.list", Path: "withdrawal/getAllRequests", Key: "withdrawalRequests"}
	updateRoute = remote.Route{Name: "withdrawal.update", Method: http.MethodPatch, Path: "withdrawal/update/:id", Key: "withdrawalRequest"}
)

// CustomerEndpoints 状态通过更新接口提交 {status}
func CustomerEndpoints() remote.Endpoints {
	return remote.Endpoints{
		List: listRoute,
		Status: func(_ string, ch domain.StatusChange) (remote.Route, any) {
			return updateRoute, map[string]string{"status": ch.Status}
		},
	}
}

// AffiliateEndpoints 通过/驳回各有独立接口，编辑只能改金额和钱包地址
func AffiliateEndpoints() remote.Endpoints {
	return remote.Endpoints{
		List:   listRoute,
		Update: updateRoute,
		Status: func(_ string, ch domain.StatusChange) (remote.Route, any) {
			if ch.Status == domain.RequestRejected {
				return remote.Route{Name: "withdrawal.reject", Method: http.MethodPatch, Path: "withdrawal/reject/:id"}, nil
			}
			return remote.Route{Name: "withdrawal.approve", Method: http.MethodPatch, Path: "withdrawal/approve/:id"}, nil
		},
	}
}

func search(w domain.WithdrawalRequest) []string {
	return []string{w.ID, w.WalletCode, w.AffiliateID}
}

func status(w domain.WithdrawalRequest) (string, bool) { return w.Status, w.Status != "" }

func NewCustomer(d feature.Deps) (*feature.Screen[domain.WithdrawalRequest], error) {
	policy, size, err := d.ListConfig(CustomerName)
	if err != nil {
		return nil, err
	}
	v := listview.New(listview.Config[domain.WithdrawalRequest]{
		Name:          CustomerName,
		Source:        remote.NewCollection[domain.WithdrawalRequest](d.Client, CustomerEndpoints(), nil),
		ID:            func(w domain.WithdrawalRequest) string { return w.ID },
		Status:        status,
		Search:        search,
		Statuses:      domain.RequestStatuses,
		Policy:        policy,
		PageSize:      size,
		FetchFallback: "Error fetching withdrawal requests.",
		Logger:        d.Logger,
	})
	return feature.NewScreen(v, handler.Ops{Get: true, Status: true}, d.Logger), nil
}

func NewAffiliate(d feature.Deps) (*feature.Screen[domain.WithdrawalRequest], error) {
	policy, size, err := d.ListConfig(AffiliateName)
	if err != nil {
		return nil, err
	}
	v := listview.New(listview.Config[domain.WithdrawalRequest]{
		Name:     AffiliateName,
		Source:   remote.NewCollection[domain.WithdrawalRequest](d.Client, AffiliateEndpoints(), nil),
		ID:       func(w domain.WithdrawalRequest) string { return w.ID },
		Status:   status,
		Search:   search,
		Statuses: domain.RequestStatuses,
		Editable: []string{"amount", "walletCode"},
		CheckStatus: func(ch domain.StatusChange) error {
			if ch.Status == domain.RequestPending {
				return domain.Invalid("status", "a request can only be approved or rejected")
			}
			return nil
		},
		Policy:        policy,
		PageSize:      size,
		FetchFallback: "Error fetching withdrawal requests.",
		Logger:        d.Logger,
	})
	return feature.NewScreen(v, handler.Ops{Get: true, Edit: true, Status: true}, d.Logger), nil
}
