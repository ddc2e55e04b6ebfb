package domain

// StatusChange 行内状态下拉框提交的内容；Reason 仅在驳回时使用
type StatusChange struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}
