package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/monitoring"
)

// InstrumentedStore 为 Store 记录 Prometheus 指标
type InstrumentedStore struct {
	Store
	backend string
}

// NewInstrumentedStore 包装存储并记录操作耗时
func NewInstrumentedStore(store Store, backend string) *InstrumentedStore {
	return &InstrumentedStore{
		Store:   store,
		backend: backend,
	}
}

// Get 获取值
func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.Store.Get(ctx, key)
	s.observe("get", start, err)
	return value, err
}

// Set 写入值
func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.Store.Set(ctx, key, value)
	s.observe("set", start, err)
	return err
}

// Remove 删除键
func (s *InstrumentedStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.Store.Remove(ctx, key)
	s.observe("remove", start, err)
	return err
}

// Clear 清空
func (s *InstrumentedStore) Clear(ctx context.Context) error {
	start := time.Now()
	err := s.Store.Clear(ctx)
	s.observe("clear", start, err)
	return err
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "miss"
	case err != nil:
		status = "error"
	}
	monitoring.StoreOperationsTotal.WithLabelValues(s.backend, op, status).Inc()
	monitoring.StoreOperationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}
