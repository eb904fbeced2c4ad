package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// 随二进制打包的 schema 迁移脚本，启动时按版本号顺序应用
//
//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations 将数据库 schema 升级到内嵌迁移脚本的最新版本。
// 已是最新版本时直接返回；上次迁移中断留下的 dirty 标记只告警，
// 需要人工介入修复后重启。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("初始化迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("构建迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("schema 迁移中断于 dirty 状态，需人工处理", zap.Uint("version", version))
		return nil
	}
	logger.Info("schema 已就绪", zap.Uint("version", version))
	return nil
}
