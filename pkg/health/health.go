package health

import (
	"context"
	"sync"
	"time"
)

// Status 健康状态
type Status string

const (
	// StatusHealthy 健康
	StatusHealthy Status = "healthy"
	// StatusUnhealthy 不健康
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded 降级
	StatusDegraded Status = "degraded"
)

// CheckResult 检查结果
type CheckResult struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Checker 健康检查器接口
type Checker interface {
	// Check 执行健康检查
	Check(ctx context.Context) CheckResult
	// Name 检查器名称
	Name() string
}

// Report 整体检查报告
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// HealthChecker 健康检查管理器
type HealthChecker struct {
	mu       sync.RWMutex
	checkers []Checker
}

// NewHealthChecker 创建健康检查管理器
func NewHealthChecker(checkers ...Checker) *HealthChecker {
	return &HealthChecker{checkers: checkers}
}

// Register 注册检查器
func (h *HealthChecker) Register(checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// Check 并发执行所有检查并汇总
func (h *HealthChecker) Check(ctx context.Context) Report {
	h.mu.RLock()
	checkers := append([]Checker(nil), h.checkers...)
	h.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checkers))
	)
	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			result := c.Check(ctx)
			mu.Lock()
			results[c.Name()] = result
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	status := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			status = StatusUnhealthy
		case StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}

	return Report{Status: status, Checks: results}
}

// PingChecker 基于 ping 函数的依赖检查（存储、缓存等）
type PingChecker struct {
	name      string
	pingFn    func(context.Context) error
	threshold time.Duration // 响应时间阈值，超过视为降级
}

// NewPingChecker 创建检查器
func NewPingChecker(name string, pingFn func(context.Context) error, threshold time.Duration) *PingChecker {
	return &PingChecker{
		name:      name,
		pingFn:    pingFn,
		threshold: threshold,
	}
}

// Name 返回检查器名称
func (p *PingChecker) Name() string {
	return p.name
}

// Check 执行检查
func (p *PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	err := p.pingFn(ctx)
	duration := time.Since(start)

	result := CheckResult{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Duration:  duration,
	}
	switch {
	case err != nil:
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	case p.threshold > 0 && duration > p.threshold:
		result.Status = StatusDegraded
	}
	return result
}
