package cache

import (
	"context"
	"sync"
)

// MemoryStore 进程内键值存储，用于本地开发和测试
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	options *Options
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(opts *Options) *MemoryStore {
	if opts == nil {
		opts = &Options{}
	}
	return &MemoryStore{
		data:    make(map[string][]byte),
		options: opts,
	}
}

// Get 获取值（返回副本）
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[s.options.makeKey(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set 写入值
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[s.options.makeKey(key)] = append([]byte(nil), value...)
	return nil
}

// Remove 删除键
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, s.options.makeKey(key))
	return nil
}

// Clear 清空
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)
	return nil
}

// Len 返回键数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Ping 内存存储始终可用
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close 无需释放资源
func (s *MemoryStore) Close() error {
	return nil
}
