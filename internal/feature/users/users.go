// Package users 用户管理页：查看、编辑、删除、改状态
package users

import (
	"net/http"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/transport/http/handler"
)

const Name = "users"

// Editable 编辑弹窗里的字段
var Editable = []string{"firstName", "lastName", "email", "phone"}

func Endpoints() remote.Endpoints {
	update := remote.Route{Name: "user.update", Method: http.MethodPatch, Path: "user/updateUserById/:id", Key: "user"}
	return remote.Endpoints{
		List:   remote.Route{Name: "user.list", Path: "user/getAllUser", Key: "user"},
		Get:    remote.Route{Name: "user.get", Path: "user/getUserById/:id", Key: "user"},
		Update: update,
		Delete: remote.Route{Name: "user.delete", Method: http.MethodDelete, Path: "user/deleteUserById/:id"},
		// 状态走同一个更新接口，只提交 status
		Status: func(_ string, ch domain.StatusChange) (remote.Route, any) {
			r := update
			r.Name = "user.status"
			return r, map[string]string{"status": ch.Status}
		},
	}
}

func New(d feature.Deps) (*feature.Screen[domain.User], error) {
	policy, size, err := d.ListConfig(Name)
	if err != nil {
		return nil, err
	}
	v := listview.New(listview.Config[domain.User]{
		Name:          Name,
		Source:        remote.NewCollection[domain.User](d.Client, Endpoints(), nil),
		ID:            func(u domain.User) string { return u.ID },
		Status:        func(u domain.User) (string, bool) { return u.Status, u.Status != "" },
		Search:        func(u domain.User) []string { return []string{u.FullName(), u.Phone, u.Email, u.AccountID} },
		Statuses:      domain.UserStatuses,
		Editable:      Editable,
		Policy:        policy,
		PageSize:      size,
		FetchFallback: "Error fetching users. Please try again.",
		Logger:        d.Logger,
	})
	ops := handler.Ops{Get: true, Edit: true, Delete: true, Status: true}
	return feature.NewScreen(v, ops, d.Logger), nil
}
