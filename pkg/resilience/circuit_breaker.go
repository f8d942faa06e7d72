package resilience

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig 熔断器配置
type BreakerConfig struct {
	// MaxRequests 半开状态下允许的最大请求数
	MaxRequests uint32
	// Interval 闭合状态下的统计周期
	Interval time.Duration
	// Timeout 打开后进入半开状态前的等待时间
	Timeout time.Duration
	// MinRequests 触发熔断的最小请求数
	MinRequests uint32
	// FailureRatio 触发熔断的失败率
	FailureRatio float64
}

// DefaultBreakerConfig 默认熔断配置：请求数 >= 5 且失败率 >= 60% 时熔断
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     10 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, c BreakerConfig, logger log.Logger) *gobreaker.CircuitBreaker {
	helper := log.NewHelper(log.With(logger, "module", "circuit-breaker"))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: c.MaxRequests,
		Interval:    c.Interval,
		Timeout:     c.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= c.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			helper.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
