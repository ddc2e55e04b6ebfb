package listview

// DefaultPageSize 与页面上的默认下拉选项一致
const DefaultPageSize = 10

// TotalPages 空列表也算 1 页，保证 "Page 1 of 1" 可渲染
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Slice 取第 page 页（从 1 开始），越界返回空切片
func Slice[E any](items []E, page, size int) []E {
	if size <= 0 || page < 1 {
		return []E{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []E{}
	}
	end := min(start+size, len(items))
	out := make([]E, end-start)
	copy(out, items[start:end])
	return out
}

// Window 当前页 + 每页条数
type Window struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func NewWindow(size int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Window{Page: 1, Size: size}
}

// GoTo 越界请求是 no-op
func (w Window) GoTo(page, total int) Window {
	if page < 1 || page > total {
		return w
	}
	w.Page = page
	return w
}

// Resize 改每页条数一律回到第 1 页
func (w Window) Resize(size int) Window {
	return Window{Page: 1, Size: size}
}

// Clamp 集合被替换/删减后把页码收回合法区间
func (w Window) Clamp(total int) Window {
	if w.Page > total {
		w.Page = total
	}
	if w.Page < 1 {
		w.Page = 1
	}
	return w
}
