package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Config 数据库配置
type Config struct {
	Driver   string
	Source   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// 连接池配置
	MaxIdleConns    int           // 最大空闲连接数，默认10
	MaxOpenConns    int           // 最大打开连接数，默认50
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认1小时

	// SlowThreshold 慢查询阈值，默认200ms
	SlowThreshold time.Duration
}

// DSN 构建连接串
func (c *Config) DSN() string {
	if c.Source != "" {
		return c.Source
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode,
	)
}

// NewDB 创建数据库连接
func NewDB(c *Config, logger log.Logger) (*gorm.DB, error) {
	logHelper := log.NewHelper(log.With(logger, "module", "database"))

	// 安全日志：不记录密码
	logHelper.Infof("connecting to database: driver=%s host=%s:%d database=%s user=%s",
		c.Driver, c.Host, c.Port, c.Database, c.User)

	var dialector gorm.Dialector
	switch c.Driver {
	case "postgres", "":
		dialector = postgres.Open(c.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}

	slow := c.SlowThreshold
	if slow == 0 {
		slow = 200 * time.Millisecond
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	db.Logger = gormLogger.New(kratosWriter{logHelper}, gormLogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxIdleConns := c.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 10
	}
	maxOpenConns := c.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 50
	}
	connMaxLifetime := c.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = time.Hour
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logHelper.Info("database connected and health check passed")
	return db, nil
}

// Ping 检查数据库连通性
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// kratosWriter 把 gorm 日志输出到 kratos logger
type kratosWriter struct {
	log *log.Helper
}

func (w kratosWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}
