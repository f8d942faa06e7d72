package resilience

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sony/gobreaker"
)

// ErrMaxRetriesExceeded 超过最大重试次数
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// RetryPolicy 重试策略
type RetryPolicy struct {
	// MaxRetries 最大重试次数（不含首次调用）
	MaxRetries int
	// InitialDelay 初始延迟
	InitialDelay time.Duration
	// MaxDelay 最大延迟
	MaxDelay time.Duration
	// BackoffMultiplier 退避乘数
	BackoffMultiplier float64
	// Retryable 判断错误是否可重试，nil 时使用 IsRetryable
	Retryable func(error) bool
	// OnRetry 重试回调
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryPolicy 默认重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Retry 执行带重试的函数
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	retryable := policy.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.delay(attempt)
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, lastErr, delay)
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return errors.Join(ErrMaxRetriesExceeded, lastErr)
}

// delay 指数退避
func (p *RetryPolicy) delay(attempt int) time.Duration {
	multiplier := p.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	d := float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// IsRetryable 判断错误是否可重试
//
// 超时、取消以及熔断器拒绝的请求不重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var permanent *PermanentError
	return !errors.As(err, &permanent)
}

// PermanentError 标记不可重试的错误（例如 4xx 响应）
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent 包装为不可重试错误
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}
