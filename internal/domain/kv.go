package domain

import "time"

// KVEntry 本地持久化键值（对应浏览器 localStorage）
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (KVEntry) TableName() string { return "kv_entries" }
