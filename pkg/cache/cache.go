package cache

import (
	"context"
	"errors"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("cache: key not found")

// Store 键值存储接口
//
// 所有实现都必须是并发安全的。Get 在键不存在时返回 ErrNotFound。
type Store interface {
	// Get 获取键对应的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入键值
	Set(ctx context.Context, key string, value []byte) error

	// Remove 删除键，键不存在时不报错
	Remove(ctx context.Context, key string) error

	// Clear 清空存储中的所有键
	Clear(ctx context.Context) error

	// Ping 检查后端连通性
	Ping(ctx context.Context) error

	// Close 关闭连接
	Close() error
}

// Options 存储选项
type Options struct {
	// 键前缀
	KeyPrefix string
}

// makeKey 生成带前缀的键
func (o *Options) makeKey(key string) string {
	if o == nil || o.KeyPrefix == "" {
		return key
	}
	return o.KeyPrefix + ":" + key
}

// Key 生成带前缀的键，供包外的存储实现使用
func (o *Options) Key(key string) string {
	return o.makeKey(key)
}
