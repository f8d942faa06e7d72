package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sony/gobreaker"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/resilience"
)

const summarizePath = "/api/v1/summarize"

// ErrSummarizerDisabled 未配置摘要服务
var ErrSummarizerDisabled = errors.New("summarizer is not configured")

type disabledSummarizer struct{}

func (disabledSummarizer) Summarize(context.Context, []domain.Message) (string, error) {
	return "", ErrSummarizerDisabled
}

// SummarizeRequest 摘要请求
type SummarizeRequest struct {
	Messages []TranscriptMessage `json:"messages"`
}

// TranscriptMessage 对话记录中的一条消息
type TranscriptMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SummarizeResponse 摘要响应
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// SummarizerClient 摘要服务 HTTP 客户端（带熔断和重试）
type SummarizerClient struct {
	baseURL        string
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	retryPolicy    resilience.RetryPolicy
	log            *log.Helper
}

// NewSummarizerClient 创建摘要服务客户端
func NewSummarizerClient(c *conf.SummarizerConfig, logger log.Logger) *SummarizerClient {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	helper := log.NewHelper(log.With(logger, "module", "infra/summarizer"))
	policy := resilience.DefaultRetryPolicy()
	policy.MaxRetries = c.MaxRetries
	if c.RetryDelay > 0 {
		policy.InitialDelay = c.RetryDelay
	}
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		helper.Warnf("summarizer retry %d after %v: %v", attempt, delay, err)
	}

	return &SummarizerClient{
		baseURL:        strings.TrimRight(c.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		circuitBreaker: resilience.NewCircuitBreaker("summarizer", resilience.DefaultBreakerConfig(), logger),
		retryPolicy:    policy,
		log:            helper,
	}
}

// Summarize 调用外部摘要服务
func (c *SummarizerClient) Summarize(ctx context.Context, transcript []domain.Message) (string, error) {
	req := SummarizeRequest{Messages: make([]TranscriptMessage, 0, len(transcript))}
	for _, m := range transcript {
		req.Messages = append(req.Messages, TranscriptMessage{
			Sender:    string(m.Sender),
			Text:      m.Text,
			Emotion:   string(m.Emotion),
			Timestamp: m.Timestamp,
		})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var result SummarizeResponse
	err = resilience.Retry(ctx, c.retryPolicy, func() error {
		// 通过熔断器执行调用
		response, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doHTTPCall(ctx, body)
		})
		if err != nil {
			return err
		}
		if err := json.Unmarshal(response.([]byte), &result); err != nil {
			return resilience.Permanent(fmt.Errorf("unmarshal response: %w", err))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("summarizer: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return "", errors.New("summarizer: empty summary")
	}
	return result.Summary, nil
}

// doHTTPCall 执行实际的HTTP调用，4xx 响应不重试
func (c *SummarizerClient) doHTTPCall(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+summarizePath, bytes.NewReader(body))
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, resilience.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
