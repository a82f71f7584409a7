/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构
 * @architecture 数据访问层 - 迁移管理
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致，name_lower 保持唯一索引
 * @dependencies country-exchange-service/service/models, gorm.io/gorm
 */

package database

import (
	"log/slog"

	"country-exchange-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	slog.Info("开始数据库迁移...")

	if err := db.AutoMigrate(&models.Country{}); err != nil {
		return err
	}

	slog.Info("数据库迁移完成")
	return nil
}
