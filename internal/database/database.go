package database

import (
	"context"
	"time"

	"github.com/wfunc/gem-game/internal/config"
	"github.com/wfunc/gem-game/internal/errors"
	"github.com/wfunc/gem-game/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局数据库实例
var DB *gorm.DB

// 慢SQL阈值
const slowThreshold = 200 * time.Millisecond

// Init 初始化数据库连接并配置连接池
func Init(cfg *config.DatabaseConfig) error {
	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(logger.GetLogger(), gormLogLevel(cfg.LogLevel)),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "打开数据库失败")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "获取连接池失败")
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库连接测试失败")
	}

	logger.Info("数据库连接成功",
		zap.String("driver", cfg.Driver),
		zap.Int("max_idle", cfg.MaxIdleConns),
		zap.Int("max_open", cfg.MaxOpenConns),
	)
	return nil
}

// openDialector 根据驱动名选择GORM方言
func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite", "sqlite3":
		return sqlite.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, errors.Newf(errors.ErrDatabaseConnect, "不支持的数据库驱动: %s", cfg.Driver)
	}
}

// gormLogLevel 配置的日志级别映射为GORM级别
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Info
	}
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}

// IsConnected 检查数据库连接是否可用
func IsConnected() bool {
	if DB == nil {
		return false
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// zapGormLogger GORM日志到zap的适配
type zapGormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
}

func newGormLogger(base *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	return &zapGormLogger{base: base, level: level}
}

// LogMode 设置日志级别
func (l *zapGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &zapGormLogger{base: l.base, level: level}
}

// Info 输出信息日志
func (l *zapGormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.base.Sugar().Infof(msg, args...)
	}
}

// Warn 输出警告日志
func (l *zapGormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.base.Sugar().Warnf(msg, args...)
	}
}

// Error 输出错误日志
func (l *zapGormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.base.Sugar().Errorf(msg, args...)
	}
}

// Trace 输出SQL追踪日志
func (l *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && err != gorm.ErrRecordNotFound && l.level >= gormlogger.Error:
		l.base.Error("SQL执行错误", append(fields, zap.Error(err))...)
	case elapsed > slowThreshold && l.level >= gormlogger.Warn:
		l.base.Warn("SQL执行缓慢", fields...)
	case l.level >= gormlogger.Info:
		l.base.Debug("SQL执行", fields...)
	}
}
