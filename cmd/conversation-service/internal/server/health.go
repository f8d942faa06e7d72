package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/data"
	pkgerrors "github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/errors"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/health"
)

// NewHealthChecker 注册存储连通性检查
func NewHealthChecker(d *data.Data) *health.HealthChecker {
	return health.NewHealthChecker(
		health.NewPingChecker("store", d.Ping, 200*time.Millisecond),
	)
}

// healthHandler 存活检查（用于 K8s liveness）
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    health.StatusHealthy,
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler 就绪检查（用于 K8s readiness）
func readinessHandler(checker *health.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		report := checker.Check(ctx)
		if report.Status == health.StatusUnhealthy {
			ErrorWithData(c, pkgerrors.ErrServiceNotReady, report)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
