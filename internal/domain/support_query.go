package domain

import "time"

// SupportQuery 用户提交的客服工单（轮询拉取）
type SupportQuery struct {
	ID        string      `json:"_id"`
	Text      string      `json:"text,omitempty"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	User      RequestUser `json:"user"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

// Preview 列表里只展示前 50 个字符
func (q SupportQuery) Preview() string {
	r := []rune(q.Text)
	if len(r) <= 50 {
		return q.Text
	}
	return string(r[:50]) + "..."
}
