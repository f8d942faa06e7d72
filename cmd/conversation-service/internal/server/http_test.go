package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/biz"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/data"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/service"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
	pkgerrors "github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/errors"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/health"
)

// stubSummarizer 固定返回摘要
type stubSummarizer struct {
	err error
}

func (s stubSummarizer) Summarize(context.Context, []domain.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "二人は映画の話をした。", nil
}

func newTestServer(t *testing.T, summarizer domain.Summarizer) http.Handler {
	t.Helper()

	logger := log.DefaultLogger
	d := data.NewData(cache.NewMemoryStore(nil), logger)
	tx := data.NewTransaction(d)
	conversations := data.NewConversationRepository(d, logger)
	favorites := data.NewFavoriteRepository(d)
	history := data.NewHistoryRepository(d)
	characters := config.NewCharacterDirectory([]config.CharacterInfo{{ID: "aoi", DisplayName: "蒼"}})
	publisher := events.NoopPublisher{}

	conversationUc := biz.NewConversationUsecase(conversations, favorites, tx, d, characters, publisher, logger)
	favoriteUc := biz.NewFavoriteUsecase(conversations, favorites, tx, logger)
	historyUc := biz.NewHistoryUsecase(history, tx, publisher, logger)
	searchUc := biz.NewSearchUsecase(conversations, logger)
	statsUc := biz.NewStatsUsecase(conversations, logger)
	summaryUc := biz.NewSummaryUsecase(conversations, tx, summarizer, logger)
	exportUc := biz.NewExportUsecase(conversations, favorites, history, tx, data.NewExportCodec(), nil, publisher, logger)

	c := &conf.Config{Server: conf.ServerConfig{HTTPAddr: ":0", RequestTimeout: 5 * time.Second}}
	srv := NewHTTPServer(
		c,
		service.NewConversationService(conversationUc, favoriteUc, searchUc, statsUc, summaryUc),
		service.NewHistoryService(historyUc, exportUc),
		NewHealthChecker(d),
		logger,
	)
	return srv.Handler()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func createConversation(t *testing.T, h http.Handler) domain.Conversation {
	t.Helper()
	w, env := doRequest(t, h, http.MethodPost, "/api/v1/conversations", map[string]string{"characterId": "aoi"})
	require.Equal(t, http.StatusCreated, w.Code)

	var conversation domain.Conversation
	require.NoError(t, json.Unmarshal(env.Data, &conversation))
	return conversation
}

func TestHTTPServer_Health(t *testing.T) {
	h := newTestServer(t, stubSummarizer{})

	w, _ := doRequest(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, h, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "store")
}

func TestHTTPServer_ConversationLifecycle(t *testing.T) {
	h := newTestServer(t, stubSummarizer{})

	conversation := createConversation(t, h)
	assert.NotEmpty(t, conversation.ID)
	assert.Equal(t, "aoi", conversation.CharacterID)
	assert.Contains(t, conversation.Title, "蒼")

	base := "/api/v1/conversations/" + conversation.ID

	w, env := doRequest(t, h, http.MethodPost, base+"/messages", domain.MessageInput{
		Text:    "映画を見に行こう",
		Sender:  domain.SenderUser,
		Emotion: domain.EmotionHappy,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var message domain.Message
	require.NoError(t, json.Unmarshal(env.Data, &message))
	assert.Equal(t, domain.EmotionHappy, message.Emotion)

	w, env = doRequest(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched domain.Conversation
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Len(t, fetched.Messages, 1)
	assert.Equal(t, 1, fetched.Metadata.TotalMessages)

	w, _ = doRequest(t, h, http.MethodPost, base+"/tags", map[string][]string{"tags": {"映画"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doRequest(t, h, http.MethodPost, base+"/favorite", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"isFavorite":true`)

	w, env = doRequest(t, h, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), conversation.ID)

	w, env = doRequest(t, h, http.MethodPost, "/api/v1/conversations/search", domain.SearchQuery{Query: "映画"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":1`)

	w, env = doRequest(t, h, http.MethodPost, base+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary domain.ConversationSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "二人は映画の話をした。", summary.Summary)

	w, _ = doRequest(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = doRequest(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "conversation not found", env.Message)
}

func TestHTTPServer_Errors(t *testing.T) {
	h := newTestServer(t, stubSummarizer{err: gobreaker.ErrOpenState})

	t.Run("MissingCharacter", func(t *testing.T) {
		w, _ := doRequest(t, h, http.MethodPost, "/api/v1/conversations", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownMessage", func(t *testing.T) {
		conversation := createConversation(t, h)
		w, _ := doRequest(t, h, http.MethodDelete, "/api/v1/conversations/"+conversation.ID+"/messages/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ImportFailed", func(t *testing.T) {
		w, env := doRequest(t, h, http.MethodPost, "/api/v1/import", []byte(`{"version":"1.0"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domain.ErrImportFailed.Error(), env.Message)
	})

	t.Run("ArchiveDisabled", func(t *testing.T) {
		w, _ := doRequest(t, h, http.MethodPost, "/api/v1/export/archive", nil)
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("CircuitOpen", func(t *testing.T) {
		conversation := createConversation(t, h)
		base := "/api/v1/conversations/" + conversation.ID
		_, _ = doRequest(t, h, http.MethodPost, base+"/messages", domain.MessageInput{Text: "hi", Sender: domain.SenderUser})

		w, _ := doRequest(t, h, http.MethodPost, base+"/summary", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("InvalidRating", func(t *testing.T) {
		w, env := doRequest(t, h, http.MethodPost, "/api/v1/history", domain.SessionSnapshot{
			CharacterID: "aoi",
			Scenario:    domain.Scenario{ID: "s1", Title: "放課後"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var entry domain.HistoryEntry
		require.NoError(t, json.Unmarshal(env.Data, &entry))

		w, _ = doRequest(t, h, http.MethodPut, "/api/v1/history/"+entry.ID+"/rating", map[string]int{"rating": 6})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPServer_ExportImportRoundTrip(t *testing.T) {
	h := newTestServer(t, stubSummarizer{})
	createConversation(t, h)
	createConversation(t, h)

	w, _ := doRequest(t, h, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := w.Body.Bytes()

	var export domain.ConversationExport
	require.NoError(t, json.Unmarshal(payload, &export))
	assert.Equal(t, domain.ConversationExportVersion, export.Version)
	assert.Len(t, export.Conversations, 2)

	w, env := doRequest(t, h, http.MethodPost, "/api/v1/import", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imported":2}`, string(env.Data))

	w, env = doRequest(t, h, http.MethodGet, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":4`)
}

func TestHTTPServer_HistorySettings(t *testing.T) {
	h := newTestServer(t, stubSummarizer{})

	w, env := doRequest(t, h, http.MethodGet, "/api/v1/history/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"maxHistoryCount":50,"autoSaveEnabled":true,"compressionEnabled":true}`, string(env.Data))

	w, env = doRequest(t, h, http.MethodPatch, "/api/v1/history/settings", map[string]int{"maxHistoryCount": 10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"maxHistoryCount":10`)

	w, _ = doRequest(t, h, http.MethodPatch, "/api/v1/history/settings", map[string]int{"maxHistoryCount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, h, http.MethodDelete, "/api/v1/data", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		err    error
		status int32
	}{
		{domain.ErrConversationNotFound, 404},
		{domain.ErrHistoryEntryNotFound, 404},
		{domain.ErrInvalidSettings, 400},
		{errors.Join(domain.ErrStorage, errors.New("boom")), 503},
		{fmt.Errorf("%w: decode conversation:x: %w", domain.ErrCorruptRecord, errors.New("bad json")), 503},
		{domain.ErrArchiveDisabled, 501},
		{fmt.Errorf("%w: a.json: %w", domain.ErrArchiveUpload, errors.New("bucket missing")), 503},
		{context.DeadlineExceeded, 504},
		{errors.New("unknown"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, toAPIError(tt.err).Code, tt.err.Error())
	}

	assert.Equal(t, pkgerrors.CodeStorageDecode, pkgerrors.GetErrorCode(toAPIError(domain.ErrCorruptRecord)))
	assert.Equal(t, pkgerrors.CodeMinIOError, pkgerrors.GetErrorCode(toAPIError(domain.ErrArchiveUpload)))
}

func TestBindError(t *testing.T) {
	var dest struct {
		Rating int `json:"rating"`
	}
	syntaxErr := json.Unmarshal([]byte("{broken"), &dest)
	typeErr := json.Unmarshal([]byte(`{"rating":"five"}`), &dest)

	assert.Equal(t, pkgerrors.CodeBadRequest, pkgerrors.GetErrorCode(bindError(syntaxErr)))
	assert.Equal(t, pkgerrors.CodeBadRequest, pkgerrors.GetErrorCode(bindError(typeErr)))
	assert.Equal(t, pkgerrors.CodeValidationFailed, pkgerrors.GetErrorCode(bindError(errors.New("Key: 'CharacterID' Error:Field validation for 'CharacterID' failed on the 'required' tag"))))
	assert.ErrorIs(t, bindError(syntaxErr), syntaxErr)
}

func TestHTTPServer_UnknownRoute(t *testing.T) {
	h := newTestServer(t, stubSummarizer{})

	w, env := doRequest(t, h, http.MethodGet, "/api/v1/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, pkgerrors.CodeNotFound, env.Code)
}

func TestReadinessHandler_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checker := health.NewHealthChecker(
		health.NewPingChecker("store", func(context.Context) error { return errors.New("connection refused") }, time.Second),
	)
	engine := gin.New()
	engine.GET("/ready", readinessHandler(checker))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, pkgerrors.CodeServiceUnavailable, resp.Code)
	assert.Contains(t, w.Body.String(), "store")
}
