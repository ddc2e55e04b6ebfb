package listview

import "strings"

// AllStatuses 状态筛选的哨兵值，等价于不筛选
const AllStatuses = "all"

// Query 搜索词 + 状态筛选
type Query struct {
	Search string `json:"search"`
	Status string `json:"status"`
}

func (q Query) searching() bool { return strings.TrimSpace(q.Search) != "" }

func (q Query) filtering() bool { return q.Status != "" && q.Status != AllStatuses }

// Filter 每次都从完整集合重新计算，不在上一次结果上叠加。
// 搜索不区分大小写，任一字段包含即命中；状态精确匹配（区分大小写）。
// 没有状态字段的记录在状态筛选下一律排除。
func Filter[E any](items []E, q Query, search func(E) []string, status func(E) (string, bool)) []E {
	needle := strings.ToLower(q.Search)
	out := make([]E, 0, len(items))
	for _, it := range items {
		if q.searching() && !matchAny(search, it, needle) {
			continue
		}
		if q.filtering() {
			if status == nil {
				continue
			}
			s, ok := status(it)
			if !ok || s != q.Status {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func matchAny[E any](search func(E) []string, it E, needle string) bool {
	if search == nil {
		return false
	}
	for _, f := range search(it) {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
