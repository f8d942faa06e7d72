package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/service"
	pkgerrors "github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/errors"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/health"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHealthChecker, NewHTTPServer, NewMetricsServer)

// maxImportBytes 导入请求体上限
const maxImportBytes = 10 << 20

// HTTPServer HTTP 服务器
type HTTPServer struct {
	engine        *gin.Engine
	server        *http.Server
	conversations *service.ConversationService
	history       *service.HistoryService
	health        *health.HealthChecker
	logger        log.Logger
	log           *log.Helper
}

// NewHTTPServer 创建 HTTP 服务器
func NewHTTPServer(
	c *conf.Config,
	conversations *service.ConversationService,
	history *service.HistoryService,
	checker *health.HealthChecker,
	logger log.Logger,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &HTTPServer{
		engine:        engine,
		conversations: conversations,
		history:       history,
		health:        checker,
		logger:        logger,
		log:           log.NewHelper(log.With(logger, "module", "server/http")),
	}

	s.registerMiddleware(c.Server)
	s.registerRoutes()

	s.server = &http.Server{
		Addr:    c.Server.HTTPAddr,
		Handler: engine,
	}
	return s
}

// registerMiddleware 注册中间件
func (s *HTTPServer) registerMiddleware(c conf.ServerConfig) {
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(CORSMiddleware())
	s.engine.Use(TracingMiddleware())
	s.engine.Use(LoggingMiddleware(s.logger))
	s.engine.Use(MetricsMiddleware())
	s.engine.Use(TimeoutMiddleware(c.RequestTimeout))
}

// registerRoutes 注册路由
func (s *HTTPServer) registerRoutes() {
	s.engine.GET("/health", healthHandler)
	s.engine.GET("/ready", readinessHandler(s.health))
	s.engine.NoRoute(func(c *gin.Context) {
		Error(c, pkgerrors.ErrNotFound)
	})

	v1 := s.engine.Group("/api/v1")
	{
		conversations := v1.Group("/conversations")
		{
			conversations.POST("", s.createConversation)
			conversations.GET("", s.listConversations)
			conversations.POST("/search", s.searchConversations)
			conversations.GET("/:id", s.getConversation)
			conversations.PATCH("/:id", s.updateConversation)
			conversations.DELETE("/:id", s.deleteConversation)

			conversations.POST("/:id/messages", s.addMessage)
			conversations.PATCH("/:id/messages/:messageId", s.updateMessage)
			conversations.DELETE("/:id/messages/:messageId", s.deleteMessage)

			conversations.POST("/:id/favorite", s.toggleFavorite)
			conversations.POST("/:id/tags", s.addTags)
			conversations.DELETE("/:id/tags/:tag", s.removeTag)
			conversations.POST("/:id/summary", s.generateSummary)
		}

		v1.GET("/favorites", s.listFavorites)
		v1.GET("/stats", s.getStats)

		v1.GET("/export", s.exportConversations)
		v1.POST("/import", s.importConversations)
		v1.POST("/export/archive", s.archiveConversations)

		history := v1.Group("/history")
		{
			history.POST("", s.saveSession)
			history.GET("", s.listHistory)
			history.DELETE("", s.clearHistory)
			history.GET("/search", s.searchHistory)
			history.GET("/stats", s.historyStats)
			history.GET("/characters/:characterId", s.historyByCharacter)
			history.GET("/settings", s.getSettings)
			history.PATCH("/settings", s.updateSettings)
			history.GET("/export", s.exportHistory)
			history.POST("/import", s.importHistory)
			history.PUT("/:id/rating", s.rateHistoryEntry)
			history.DELETE("/:id", s.deleteHistoryEntry)
		}

		v1.DELETE("/data", s.clearAll)
	}
}

// Handler 返回 http.Handler（用于测试）
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Start 启动服务器，阻塞直到关闭
func (s *HTTPServer) Start() error {
	s.log.Infof("HTTP server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop 优雅关闭
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("HTTP server stopping")
	return s.server.Shutdown(ctx)
}

// MetricsServer Prometheus 指标端点
type MetricsServer struct {
	server *http.Server
	log    *log.Helper
}

// NewMetricsServer 创建指标服务器
func NewMetricsServer(c *conf.Config, logger log.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &MetricsServer{
		server: &http.Server{Addr: c.Server.MetricsAddr, Handler: mux},
		log:    log.NewHelper(log.With(logger, "module", "server/metrics")),
	}
}

// Start 启动指标服务器；未配置地址时直接返回
func (m *MetricsServer) Start() error {
	if m.server.Addr == "" {
		return nil
	}
	m.log.Infof("metrics server listening on %s", m.server.Addr)
	if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Stop 关闭指标服务器
func (m *MetricsServer) Stop(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

// ========== Conversation handlers ==========

// createConversationRequest 创建对话请求
type createConversationRequest struct {
	CharacterID string `json:"characterId" binding:"required"`
	Scenario    string `json:"scenario"`
	Title       string `json:"title"`
}

func (s *HTTPServer) createConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, bindError(err))
		return
	}

	conversation, err := s.conversations.CreateConversation(c.Request.Context(), req.CharacterID, req.Scenario, req.Title)
	if err != nil {
		// 持久化失败时仍返回内存中的对话
		ErrorWithData(c, err, conversation)
		return
	}
	Created(c, conversation)
}

func (s *HTTPServer) listConversations(c *gin.Context) {
	conversations, err := s.conversations.ListConversations(c.Request.Context(), c.Query("characterId"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"conversations": conversations, "total": len(conversations)})
}

func (s *HTTPServer) getConversation(c *gin.Context) {
	conversation, err := s.conversations.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, conversation)
}

func (s *HTTPServer) updateConversation(c *gin.Context) {
	var patch domain.ConversationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Error(c, bindError(err))
		return
	}

	conversation, err := s.conversations.UpdateConversation(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, conversation)
}

func (s *HTTPServer) deleteConversation(c *gin.Context) {
	if err := s.conversations.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

func (s *HTTPServer) searchConversations(c *gin.Context) {
	var query domain.SearchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		Error(c, bindError(err))
		return
	}

	conversations, err := s.conversations.SearchConversations(c.Request.Context(), query)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"conversations": conversations, "total": len(conversations)})
}

func (s *HTTPServer) addMessage(c *gin.Context) {
	var input domain.MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, bindError(err))
		return
	}

	message, err := s.conversations.AddMessage(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, message)
}

func (s *HTTPServer) updateMessage(c *gin.Context) {
	var patch domain.MessagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Error(c, bindError(err))
		return
	}

	message, err := s.conversations.UpdateMessage(c.Request.Context(), c.Param("id"), c.Param("messageId"), patch)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, message)
}

func (s *HTTPServer) deleteMessage(c *gin.Context) {
	if err := s.conversations.DeleteMessage(c.Request.Context(), c.Param("id"), c.Param("messageId")); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

func (s *HTTPServer) toggleFavorite(c *gin.Context) {
	isFavorite, err := s.conversations.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id"), "isFavorite": isFavorite})
}

// tagsRequest 添加标签请求
type tagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

func (s *HTTPServer) addTags(c *gin.Context) {
	var req tagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, bindError(err))
		return
	}

	conversation, err := s.conversations.AddTags(c.Request.Context(), c.Param("id"), req.Tags)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, conversation)
}

func (s *HTTPServer) removeTag(c *gin.Context) {
	conversation, err := s.conversations.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, conversation)
}

func (s *HTTPServer) generateSummary(c *gin.Context) {
	summary, err := s.conversations.GenerateSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, summary)
}

func (s *HTTPServer) listFavorites(c *gin.Context) {
	conversations, err := s.conversations.ListFavorites(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"conversations": conversations, "total": len(conversations)})
}

func (s *HTTPServer) getStats(c *gin.Context) {
	stats, err := s.conversations.GetStats(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, stats)
}

func (s *HTTPServer) clearAll(c *gin.Context) {
	if err := s.conversations.ClearAll(c.Request.Context()); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// ========== Export / import handlers ==========

func (s *HTTPServer) exportConversations(c *gin.Context) {
	payload, err := s.history.ExportConversations(c.Request.Context(), c.QueryArray("ids"))
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (s *HTTPServer) importConversations(c *gin.Context) {
	payload, err := readBody(c)
	if err != nil {
		Error(c, err)
		return
	}

	imported, err := s.history.ImportConversations(c.Request.Context(), payload)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"imported": imported})
}

// archiveRequest 归档请求，ids 为空表示全部
type archiveRequest struct {
	IDs []string `json:"ids"`
}

func (s *HTTPServer) archiveConversations(c *gin.Context) {
	var req archiveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, bindError(err))
			return
		}
	}

	object, err := s.history.ArchiveConversations(c.Request.Context(), req.IDs)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, gin.H{"object": object})
}

func (s *HTTPServer) exportHistory(c *gin.Context) {
	payload, err := s.history.ExportHistory(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (s *HTTPServer) importHistory(c *gin.Context) {
	payload, err := readBody(c)
	if err != nil {
		Error(c, err)
		return
	}

	if err := s.history.ImportHistory(c.Request.Context(), payload); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// readBody 读取原始请求体
func readBody(c *gin.Context) ([]byte, error) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImportFailed, err)
	}
	return payload, nil
}

// ========== History handlers ==========

func (s *HTTPServer) saveSession(c *gin.Context) {
	var snapshot domain.SessionSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		Error(c, bindError(err))
		return
	}

	entry, err := s.history.SaveSession(c.Request.Context(), snapshot)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, entry)
}

func (s *HTTPServer) listHistory(c *gin.Context) {
	entries, err := s.history.ListHistory(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"history": entries, "total": len(entries)})
}

func (s *HTTPServer) clearHistory(c *gin.Context) {
	if err := s.history.ClearHistory(c.Request.Context()); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

func (s *HTTPServer) deleteHistoryEntry(c *gin.Context) {
	if err := s.history.DeleteHistoryEntry(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

func (s *HTTPServer) searchHistory(c *gin.Context) {
	entries, err := s.history.SearchHistory(c.Request.Context(), c.Query("q"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"history": entries, "total": len(entries)})
}

func (s *HTTPServer) historyByCharacter(c *gin.Context) {
	entries, err := s.history.HistoryByCharacter(c.Request.Context(), c.Param("characterId"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"history": entries, "total": len(entries)})
}

func (s *HTTPServer) historyStats(c *gin.Context) {
	stats, err := s.history.HistoryStats(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, stats)
}

// ratingRequest 评分请求
type ratingRequest struct {
	Rating int `json:"rating"`
}

func (s *HTTPServer) rateHistoryEntry(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, bindError(err))
		return
	}

	entry, err := s.history.RateHistoryEntry(c.Request.Context(), c.Param("id"), req.Rating)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, entry)
}

func (s *HTTPServer) getSettings(c *gin.Context) {
	settings, err := s.history.GetSettings(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, settings)
}

func (s *HTTPServer) updateSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Error(c, bindError(err))
		return
	}

	settings, err := s.history.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, settings)
}
