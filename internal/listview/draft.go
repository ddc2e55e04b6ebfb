package listview

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"affiliate-admin/internal/domain"
)

// Draft 编辑表单：打开时从后端拉取最新记录，只保留可编辑字段
type Draft struct {
	ID     string
	fields map[string]any
	allow  []string
}

// Edit 打开编辑表单；后端没有单条查询接口时用本地集合里的记录
func (v *View[E]) Edit(ctx context.Context, id string) (*Draft, error) {
	if len(v.cfg.Editable) == 0 {
		return nil, domain.ErrUnsupported
	}
	rec, err := v.cfg.Source.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUnsupported) {
		var ok bool
		if rec, ok = v.Find(id); !ok {
			return nil, domain.ErrNotFound
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}
	m, err := toMap(rec)
	if err != nil {
		return nil, err
	}
	d := &Draft{ID: id, fields: map[string]any{}, allow: slices.Clone(v.cfg.Editable)}
	for _, k := range d.allow {
		d.fields[k] = m[k]
	}
	return d, nil
}

// Submit 提交草稿，语义同 Update
func (v *View[E]) Submit(ctx context.Context, d *Draft) error {
	return v.Update(ctx, d.ID, d.Fields())
}

func (d *Draft) Get(field string) (any, bool) {
	val, ok := d.fields[field]
	return val, ok
}

func (d *Draft) Set(field string, value any) error {
	if !slices.Contains(d.allow, field) {
		return domain.Invalid(field, "field is not editable")
	}
	d.fields[field] = value
	return nil
}

func (d *Draft) Fields() map[string]any { return maps.Clone(d.fields) }

func (d *Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	}{d.ID, d.fields})
}
