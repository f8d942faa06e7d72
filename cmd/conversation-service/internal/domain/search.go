package domain

// SortField 排序字段
type SortField string

const (
	SortByLastMessageAt SortField = "lastMessageAt"
	SortByStartedAt     SortField = "startedAt"
	SortByTitle         SortField = "title"
	SortByMessageCount  SortField = "messageCount"
)

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchFilters 过滤条件，各条件之间为 AND 关系
type SearchFilters struct {
	CharacterID string `json:"characterId,omitempty"`
	IsFavorite  *bool  `json:"isFavorite,omitempty"`
	// Emotions 情感曲线中任意一点命中即可
	Emotions []Emotion `json:"emotions,omitempty"`
	// MinLength/MaxLength 消息数的闭区间
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`
	// Tags 包含任意一个标签即可
	Tags []string `json:"tags,omitempty"`
}

// SearchQuery 搜索请求
type SearchQuery struct {
	// Query 在标题或任意消息文本中做大小写无关的子串匹配，空串匹配全部
	Query     string        `json:"query,omitempty"`
	Filters   SearchFilters `json:"filters"`
	SortBy    SortField     `json:"sortBy,omitempty"`
	SortOrder SortOrder     `json:"sortOrder,omitempty"`
	// Limit <= 0 表示不限制
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ConversationStats 对话统计
type ConversationStats struct {
	TotalConversations  int             `json:"totalConversations"`
	TotalMessages       int             `json:"totalMessages"`
	AverageLength       float64         `json:"averageLength"`
	FavoriteCharacter   string          `json:"favoriteCharacter"`
	EmotionDistribution map[Emotion]int `json:"emotionDistribution"`
}
