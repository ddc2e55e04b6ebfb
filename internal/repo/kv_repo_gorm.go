package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"affiliate-admin/internal/domain"
)

// KVRepo 基于 gorm 的本地键值存储（sqlite 默认，也支持 mysql/postgres）
type KVRepo struct{ db *gorm.DB }

func NewKVRepo(db *gorm.DB) *KVRepo { return &KVRepo{db: db} }

// Migrate 建表
func (r *KVRepo) Migrate() error { return r.db.AutoMigrate(&domain.KVEntry{}) }

func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var e domain.KVEntry
	err := r.db.WithContext(ctx).Where(&domain.KVEntry{Key: key}).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	e := domain.KVEntry{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where(&domain.KVEntry{Key: key}).Delete(&domain.KVEntry{}).Error
}
