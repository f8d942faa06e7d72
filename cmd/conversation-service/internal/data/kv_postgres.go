package data

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/cache"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/database"
)

// KVEntryDO 键值表记录
type KVEntryDO struct {
	Key       string `gorm:"primaryKey;size:512"`
	Value     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (KVEntryDO) TableName() string {
	return "kv_entries"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresStore 基于 PostgreSQL 单表的键值存储
type PostgresStore struct {
	db      *gorm.DB
	options *cache.Options
}

// NewPostgresStore 创建 PostgreSQL 键值存储
func NewPostgresStore(db *gorm.DB, opts *cache.Options) *PostgresStore {
	if opts == nil {
		opts = &cache.Options{}
	}
	return &PostgresStore{
		db:      db,
		options: opts,
	}
}

// Get 获取值
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var do KVEntryDO
	err := s.db.WithContext(ctx).Where("key = ?", s.options.Key(key)).First(&do).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return do.Value, nil
}

// Set 写入值（存在则覆盖）
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	do := &KVEntryDO{
		Key:       s.options.Key(key),
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(do).Error
}

// Remove 删除键
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", s.options.Key(key)).Delete(&KVEntryDO{}).Error
}

// Clear 清空前缀下的所有键，无前缀时清空整表
func (s *PostgresStore) Clear(ctx context.Context) error {
	if s.options.KeyPrefix == "" {
		return s.db.WithContext(ctx).
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&KVEntryDO{}).Error
	}
	pattern := likeEscaper.Replace(s.options.KeyPrefix+":") + "%"
	return s.db.WithContext(ctx).Where("key LIKE ?", pattern).Delete(&KVEntryDO{}).Error
}

// Ping 检查连通性
func (s *PostgresStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

// Close 关闭连接
func (s *PostgresStore) Close() error {
	return database.Close(s.db)
}
