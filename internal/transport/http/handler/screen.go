package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/transport/http/ez"
)

// Ops 页面支持的操作；不支持的路由不挂载
type Ops struct {
	Get    bool
	Edit   bool
	Delete bool
	Status bool
}

// Lifecycle 页面首次被访问时挂载（首屏拉取、启动轮询）
type Lifecycle interface {
	Ensure(ctx context.Context) error
}

type Screen[E any] struct {
	view *listview.View[E]
	ops  Ops
	life Lifecycle
}

func NewScreen[E any](v *listview.View[E], ops Ops, life Lifecycle) *Screen[E] {
	return &Screen[E]{view: v, ops: ops, life: life}
}

type listOut[E any] struct {
	listview.Snapshot[E]
	Statuses []string `json:"statuses"`
	Policy   string   `json:"policy"`
}

type mutationOut[E any] struct {
	ID     string `json:"id"`
	Record *E     `json:"record,omitempty"`
}

// Mount 在 /<screen> 下挂载列表、详情、编辑、状态、删除
func (h *Screen[E]) Mount(g *gin.RouterGroup) {
	e := ez.New(g.Group("/" + h.view.Name()))
	fetchFallback := h.view.FetchFallback()

	ez.RegisterAction(e, ez.Action[listQuery, listOut[E]]{
		Method:   http.MethodGet,
		Path:     "",
		Binder:   ez.BindQuery,
		Fallback: fetchFallback,
		Handler:  h.list,
	})

	if h.ops.Get {
		ez.RegisterAction(e, ez.Action[struct{}, E]{
			Method:  http.MethodGet,
			Path:    "/:id",
			Binder:  ez.BindNone,
			Handler: h.get,
		})
	}

	if h.ops.Edit {
		ez.RegisterAction(e, ez.Action[struct{}, *listview.Draft]{
			Method:   http.MethodGet,
			Path:     "/:id/draft",
			Binder:   ez.BindNone,
			Fallback: "Error fetching details. Please try again.",
			Handler: func(c *gin.Context, _ *struct{}) (*listview.Draft, error) {
				return h.view.Edit(c.Request.Context(), c.Param("id"))
			},
		})
		ez.RegisterAction(e, ez.Action[map[string]any, mutationOut[E]]{
			Method:   http.MethodPatch,
			Path:     "/:id",
			Binder:   ez.BindJSON,
			Fallback: "Error updating record. Please try again.",
			Handler: func(c *gin.Context, in *map[string]any) (mutationOut[E], error) {
				id := c.Param("id")
				if err := h.view.Update(c.Request.Context(), id, *in); err != nil {
					return mutationOut[E]{}, err
				}
				return h.result(id), nil
			},
		})
	}

	if h.ops.Status {
		ez.RegisterAction(e, ez.Action[domain.StatusChange, mutationOut[E]]{
			Method:   http.MethodPut,
			Path:     "/:id/status",
			Binder:   ez.BindJSON,
			Fallback: "Error updating status. Please try again.",
			Handler: func(c *gin.Context, in *domain.StatusChange) (mutationOut[E], error) {
				id := c.Param("id")
				if err := h.view.SetStatus(c.Request.Context(), id, *in); err != nil {
					return mutationOut[E]{}, err
				}
				return h.result(id), nil
			},
		})
	}

	if h.ops.Delete {
		ez.RegisterAction(e, ez.Action[struct{}, mutationOut[E]]{
			Method:   http.MethodDelete,
			Path:     "/:id",
			Binder:   ez.BindNone,
			Fallback: "Error deleting record. Please try again.",
			Handler: func(c *gin.Context, _ *struct{}) (mutationOut[E], error) {
				id := c.Param("id")
				confirmed, _ := strconv.ParseBool(c.Query("confirm"))
				if err := h.view.Remove(c.Request.Context(), id, confirmed); err != nil {
					return mutationOut[E]{}, err
				}
				return mutationOut[E]{ID: id}, nil
			},
		})
	}
}

// listQuery 指针字段表示“出现才生效”
type listQuery struct {
	Q       *string `form:"q"`
	Status  *string `form:"status"`
	Page    *int    `form:"page"`
	Size    *int    `form:"size"`
	Refresh bool    `form:"refresh"`
}

// list q/status/size 变化都回到第 1 页，page 最后应用
func (h *Screen[E]) list(c *gin.Context, in *listQuery) (listOut[E], error) {
	ctx := c.Request.Context()
	var out listOut[E]
	if h.life != nil {
		if err := h.life.Ensure(ctx); err != nil {
			return out, err
		}
	}
	if in.Refresh {
		if err := h.view.Load(ctx); err != nil {
			return out, err
		}
	}
	if err := h.view.Err(); err != nil {
		return out, err
	}

	if in.Q != nil {
		h.view.SetSearch(*in.Q)
	}
	if in.Status != nil {
		if err := h.view.SetStatusFilter(*in.Status); err != nil {
			return out, err
		}
	}
	if in.Size != nil && *in.Size != h.view.Window().Size {
		if err := h.view.SetPageSize(*in.Size); err != nil {
			return out, err
		}
	}
	if in.Page != nil {
		h.view.GoTo(*in.Page)
	}

	out.Snapshot = h.view.Snapshot()
	out.Statuses = h.view.Statuses()
	out.Policy = h.view.Policy().String()
	return out, nil
}

func (h *Screen[E]) get(c *gin.Context, _ *struct{}) (E, error) {
	rec, ok := h.view.Find(c.Param("id"))
	if !ok {
		return rec, domain.ErrNotFound
	}
	return rec, nil
}

func (h *Screen[E]) result(id string) mutationOut[E] {
	out := mutationOut[E]{ID: id}
	if rec, ok := h.view.Find(id); ok {
		out.Record = &rec
	}
	return out
}
