// Package session 取代散落各处的 localStorage 读写：每个存储键对应一个显式注入的 Session。
package session

import (
	"context"
	"errors"
	"fmt"

	"affiliate-admin/internal/core/auth"
)

// 存储键（两套 token 键在后端约定里是分开的，不能合并）
const (
	KeyAdminToken = "adminToken"
	KeyToken      = "token"
	KeyAdminEmail = "adminEmail"
)

var ErrNoToken = errors.New("no token stored")

// Store 持久化键值存储（repo.KVRepo / repo.RedisKV）
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Session struct {
	store Store
	key   string
}

func New(store Store, key string) *Session { return &Session{store: store, key: key} }

func (s *Session) Key() string { return s.key }

// Token 未登录时返回空串，不算错误
func (s *Session) Token(ctx context.Context) (string, error) {
	v, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	if err := s.store.Set(ctx, s.key, token); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

func (s *Session) ClearToken(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear %s: %w", s.key, err)
	}
	return nil
}

func (s *Session) Present(ctx context.Context) bool {
	tok, err := s.Token(ctx)
	return err == nil && tok != ""
}

// Claims 解出 token 里的管理员 ID（设置页用）
func (s *Session) Claims(ctx context.Context) (*auth.Claims, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, ErrNoToken
	}
	return auth.Decode(tok)
}
