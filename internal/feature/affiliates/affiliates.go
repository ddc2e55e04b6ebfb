// Package affiliates 返利页：推广账户余额与下线（只读，需要 token）
package affiliates

import (
	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/transport/http/handler"
)

const Name = "affiliates"

func Endpoints() remote.Endpoints {
	return remote.Endpoints{
		List: remote.Route{Name: "affiliate.list", Path: "affiliate/getAffiliates", Key: "affiliate", Auth: true},
	}
}

func New(d feature.Deps) (*feature.Screen[domain.Affiliate], error) {
	policy, size, err := d.ListConfig(Name)
	if err != nil {
		return nil, err
	}
	v := listview.New(listview.Config[domain.Affiliate]{
		Name:   Name,
		Source: remote.NewCollection[domain.Affiliate](d.Client, Endpoints(), d.Token),
		ID:     func(a domain.Affiliate) string { return a.ID },
		Search: func(a domain.Affiliate) []string {
			return []string{a.FullName(), a.Email, a.ReferralCode}
		},
		Policy:        policy,
		PageSize:      size,
		FetchFallback: "Error fetching affiliates. Please try again.",
		Logger:        d.Logger,
	})
	return feature.NewScreen(v, handler.Ops{Get: true}, d.Logger), nil
}
