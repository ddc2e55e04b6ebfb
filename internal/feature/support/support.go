// Package support 客服工单页：挂载期间定时刷新
package support

import (
	"time"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/transport/http/handler"
)

const (
	Name            = "support-queries"
	DefaultInterval = 10 * time.Second
)

func Endpoints() remote.Endpoints {
	return remote.Endpoints{
		List: remote.Route{Name: "support.list", Path: "support/getQueries", Key: "data"},
	}
}

func New(d feature.Deps) (*feature.Screen[domain.SupportQuery], error) {
	policy, size, err := d.ListConfig(Name)
	if err != nil {
		return nil, err
	}
	v := listview.New(listview.Config[domain.SupportQuery]{
		Name:   Name,
		Source: remote.NewCollection[domain.SupportQuery](d.Client, Endpoints(), nil),
		ID:     func(q domain.SupportQuery) string { return q.ID },
		Search: func(q domain.SupportQuery) []string {
			return []string{q.User.FirstName + " " + q.User.LastName, q.User.Email, q.Text}
		},
		Policy:        policy,
		PageSize:      size,
		FetchFallback: "Error fetching support queries. Please try again.",
		Logger:        d.Logger,
	})
	interval := DefaultInterval
	if d.Config != nil && d.Config.Poll.SupportQueriesSec > 0 {
		interval = time.Duration(d.Config.Poll.SupportQueriesSec) * time.Second
	}
	s := feature.NewScreen(v, handler.Ops{Get: true}, d.Logger)
	if d.Scheduler != nil {
		s.WithPolling(d.Scheduler, interval)
	}
	return s, nil
}
