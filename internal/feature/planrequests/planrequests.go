// Package planrequests 套餐申请审核页（需要 adminToken）
package planrequests

import (
	"net/http"
	"strings"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/transport/http/handler"
)

const Name = "plan-requests"

type processBody struct {
	RequestID       string `json:"requestId"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

func Endpoints() remote.Endpoints {
	return remote.Endpoints{
		List: remote.Route{Name: "plan.list", Path: "user/pending-plan-requests", Key: "pendingRequests", Auth: true},
		Status: func(id string, ch domain.StatusChange) (remote.Route, any) {
			r := remote.Route{Name: "plan.process", Method: http.MethodPost, Path: "user/process-plan-request", Auth: true}
			return r, processBody{RequestID: id, Status: ch.Status, RejectionReason: strings.TrimSpace(ch.Reason)}
		},
	}
}

// checkStatus 只能通过或驳回；驳回必须写原因
func checkStatus(ch domain.StatusChange) error {
	switch ch.Status {
	case domain.RequestApproved:
		return nil
	case domain.RequestRejected:
		if strings.TrimSpace(ch.Reason) == "" {
			return domain.Invalid("reason", "Please provide a reason for rejection")
		}
		return nil
	}
	return domain.Invalid("status", "a request can only be approved or rejected")
}

// normalize 后端没给状态的申请按待审核展示
func normalize(r domain.PlanRequest) domain.PlanRequest {
	if r.Status == "" {
		r.Status = domain.RequestPending
	}
	return r
}

func New(d feature.Deps) (*feature.Screen[domain.PlanRequest], error) {
	policy, size, err := d.ListConfig(Name)
	if err != nil {
		return nil, err
	}
	v := listview.New(listview.Config[domain.PlanRequest]{
		Name:   Name,
		Source: remote.NewCollection[domain.PlanRequest](d.Client, Endpoints(), d.AdminToken),
		ID:     func(r domain.PlanRequest) string { return r.ID },
		Status: func(r domain.PlanRequest) (string, bool) { return r.Status, r.Status != "" },
		Search: func(r domain.PlanRequest) []string {
			return []string{r.FullName(), r.UserData.Phone, r.ID}
		},
		Statuses:      domain.RequestStatuses,
		Normalize:     normalize,
		CheckStatus:   checkStatus,
		Policy:        policy,
		PageSize:      size,
		FetchFallback: "Error fetching pending requests. Please try again.",
		Logger:        d.Logger,
	})
	return feature.NewScreen(v, handler.Ops{Get: true, Status: true}, d.Logger), nil
}
