package data

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/database"
)

// NewDB 创建数据库连接（使用统一数据库包）
func NewDB(c *conf.DatabaseConfig, logger log.Logger) (*gorm.DB, error) {
	dbConfig := &database.Config{
		Driver:          "postgres",
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.DBName,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}

	db, err := database.NewDB(dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 自动迁移
	if err := autoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	return db, nil
}

// autoMigrate 自动迁移数据库表
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&KVEntryDO{},
	)
}
