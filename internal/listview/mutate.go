package listview

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"affiliate-admin/internal/domain"
)

// Busy 该记录是否有提交中的操作（按钮置灰）
func (v *View[E]) Busy(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.inflight[id]
	return ok
}

func (v *View[E]) begin(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.inflight[id]; ok {
		return domain.ErrBusy
	}
	v.inflight[id] = struct{}{}
	return nil
}

func (v *View[E]) end(id string) {
	v.mu.Lock()
	delete(v.inflight, id)
	v.mu.Unlock()
}

// Update 提交编辑表单。失败时本地集合保持不变。
func (v *View[E]) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := v.checkEditable(fields); err != nil {
		return err
	}
	if err := v.begin(id); err != nil {
		return err
	}
	defer v.end(id)

	rec, err := v.cfg.Source.Update(ctx, id, fields)
	if err != nil {
		v.log.Info("update rejected", zap.String("id", id), zap.Error(err))
		return err
	}
	if v.cfg.Policy == Refetch {
		v.refetch(ctx)
		return nil
	}
	return v.patch(id, rec, fields)
}

// Remove 删除必须先确认；未确认时不发请求
func (v *View[E]) Remove(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}
	if err := v.begin(id); err != nil {
		return err
	}
	defer v.end(id)

	if err := v.cfg.Source.Remove(ctx, id); err != nil {
		v.log.Info("delete rejected", zap.String("id", id), zap.Error(err))
		return err
	}
	if v.cfg.Policy == Refetch {
		v.refetch(ctx)
		return nil
	}
	v.drop(id)
	return nil
}

// SetStatus 状态变更总是本地修补 status 字段，不论页面策略
func (v *View[E]) SetStatus(ctx context.Context, id string, ch domain.StatusChange) error {
	if err := v.checkStatus(ch); err != nil {
		return err
	}
	if err := v.begin(id); err != nil {
		return err
	}
	defer v.end(id)

	rec, err := v.cfg.Source.SetStatus(ctx, id, ch)
	if err != nil {
		v.log.Info("status change rejected", zap.String("id", id), zap.String("status", ch.Status), zap.Error(err))
		return err
	}
	if rec != nil {
		if s, ok := v.statusOf(*rec); !ok || s != ch.Status {
			rec = nil
		}
	}
	return v.patch(id, rec, map[string]any{"status": ch.Status})
}

func (v *View[E]) statusOf(e E) (string, bool) {
	if v.cfg.Status == nil {
		return "", false
	}
	return v.cfg.Status(e)
}

// refetch 变更已成功，重新拉取失败只体现在错误标记上
func (v *View[E]) refetch(ctx context.Context) {
	if err := v.Load(ctx); err != nil {
		v.log.Warn("refetch after mutation failed", zap.Error(err))
	}
}

// patch 用后端返回的记录（或本地合并后的记录）原子替换同 ID 的那一条
func (v *View[E]) patch(id string, rec *E, fields map[string]any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer v.bump()

	i := v.indexOf(id)
	if i < 0 {
		return nil
	}
	var next E
	if rec != nil {
		next = *rec
	} else {
		merged, err := merge(v.items[i], fields)
		if err != nil {
			return fmt.Errorf("patch %s: %w", id, err)
		}
		next = merged
	}
	items := slices.Clone(v.items)
	items[i] = v.normalize(next)
	v.items = items
	v.win = v.win.Clamp(TotalPages(len(v.filtered()), v.win.Size))
	return nil
}

func (v *View[E]) drop(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer v.bump()

	v.items = slices.DeleteFunc(slices.Clone(v.items), func(e E) bool { return v.cfg.ID(e) == id })
	v.win = v.win.Clamp(TotalPages(len(v.filtered()), v.win.Size))
}

// bump 本地修补也占一个序号，让之前发出的拉取作废
func (v *View[E]) bump() {
	v.seq++
	v.applied = v.seq
}

func (v *View[E]) checkEditable(fields map[string]any) error {
	if len(v.cfg.Editable) == 0 {
		return domain.ErrUnsupported
	}
	if len(fields) == 0 {
		return domain.Invalid("fields", "nothing to update")
	}
	for k := range fields {
		if !slices.Contains(v.cfg.Editable, k) {
			return domain.Invalid(k, "field is not editable")
		}
	}
	return nil
}

func (v *View[E]) checkStatus(ch domain.StatusChange) error {
	if v.cfg.Status == nil {
		return domain.ErrUnsupported
	}
	if len(v.cfg.Statuses) > 0 && !slices.Contains(v.cfg.Statuses, ch.Status) {
		return domain.Invalid("status", "unknown status %q", ch.Status)
	}
	if v.cfg.CheckStatus != nil {
		return v.cfg.CheckStatus(ch)
	}
	return nil
}

// merge 把提交的字段按 JSON 名覆盖到记录上
func merge[E any](e E, fields map[string]any) (E, error) {
	m, err := toMap(e)
	if err != nil {
		return e, err
	}
	for k, val := range fields {
		m[k] = val
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return e, err
	}
	var out E
	if err := json.Unmarshal(raw, &out); err != nil {
		return e, err
	}
	return out, nil
}

func toMap[E any](e E) (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
