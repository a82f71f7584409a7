/*
 * @module service/country/store
 * @description 国家表数据访问层，封装整表替换、统计和按名称读写
 * @architecture 数据访问层 - 基于 gorm 的仓库实现
 * @stateFlow 刷新：开启事务 -> 删除全部 -> 批量插入 -> 提交；失败则回滚
 * @rules 整表替换必须在单个事务内完成；回滚失败只记录日志
 * @dependencies gorm.io/gorm
 */

package country

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"country-exchange-service/service/models"

	"gorm.io/gorm"
)

const insertBatchSize = 100

// Store 刷新流程依赖的存储接口
type Store interface {
	ReplaceAll(ctx context.Context, records []models.Country) error
	Count(ctx context.Context) (int64, error)
	TopByGDP(ctx context.Context, limit int) ([]models.Country, error)
}

// ListFilter 列表查询条件
type ListFilter struct {
	Region      string
	Currency    string
	SortGDPDesc bool
}

// GormStore gorm 仓库实现
type GormStore struct {
	db        *gorm.DB
	batchSize int
}

// NewGormStore 创建仓库
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, batchSize: insertBatchSize}
}

// ReplaceAll 在一个事务内清空表并写入新批次
// 使用 DELETE 而不是 TRUNCATE，部分数据库的 TRUNCATE 会隐式提交事务
func (s *GormStore) ReplaceAll(ctx context.Context, records []models.Country) (err error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storageError("begin", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			s.rollback(tx)
			panic(r)
		}
		if err != nil {
			s.rollback(tx)
		}
	}()

	if err = tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Country{}).Error; err != nil {
		return storageError("delete", err)
	}

	if len(records) > 0 {
		if err = tx.CreateInBatches(records, s.batchSize).Error; err != nil {
			return storageError("insert", err)
		}
	}

	if err = tx.Commit().Error; err != nil {
		return storageError("commit", err)
	}
	return nil
}

// rollback 尽力回滚，失败只记录日志；事务已结束（如提交失败后）不再告警
func (s *GormStore) rollback(tx *gorm.DB) {
	err := tx.Rollback().Error
	if err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) && !errors.Is(err, sql.ErrTxDone) {
		slog.Warn("事务回滚失败", "error", err)
	}
}

// Count 记录总数
func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Country{}).Count(&total).Error; err != nil {
		return 0, storageError("count", err)
	}
	return total, nil
}

// TopByGDP 按估算GDP降序取前 limit 条，GDP为空的记录不参与排名
func (s *GormStore) TopByGDP(ctx context.Context, limit int) ([]models.Country, error) {
	var countries []models.Country
	err := s.db.WithContext(ctx).
		Where("estimated_gdp IS NOT NULL").
		Order("estimated_gdp DESC").
		Order("id ASC").
		Limit(limit).
		Find(&countries).Error
	if err != nil {
		return nil, storageError("top_by_gdp", err)
	}
	return countries, nil
}

// List 按条件查询
func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]models.Country, error) {
	query := s.db.WithContext(ctx).Model(&models.Country{})
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Currency != "" {
		query = query.Where("currency_code = ?", filter.Currency)
	}
	if filter.SortGDPDesc {
		// 各数据库对 NULL 的排序位置不同，统一放到最后
		query = query.Order("estimated_gdp IS NULL").Order("estimated_gdp DESC")
	}
	query = query.Order("created_at ASC").Order("id ASC")

	countries := make([]models.Country, 0)
	if err := query.Find(&countries).Error; err != nil {
		return nil, storageError("list", err)
	}
	return countries, nil
}

// FindByNameLower 按小写名称查询
func (s *GormStore) FindByNameLower(ctx context.Context, nameLower string) (*models.Country, error) {
	var country models.Country
	err := s.db.WithContext(ctx).Where("name_lower = ?", nameLower).Take(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, storageError("find", err)
	}
	return &country, nil
}

// DeleteByNameLower 按小写名称删除
func (s *GormStore) DeleteByNameLower(ctx context.Context, nameLower string) error {
	result := s.db.WithContext(ctx).Where("name_lower = ?", nameLower).Delete(&models.Country{})
	if result.Error != nil {
		return storageError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCountryNotFound
	}
	return nil
}

// LatestRefreshedAt 最近一次刷新时间，表为空时返回 nil
func (s *GormStore) LatestRefreshedAt(ctx context.Context) (*time.Time, error) {
	var latest models.Country
	err := s.db.WithContext(ctx).
		Select("id", "last_refreshed_at").
		Where("last_refreshed_at IS NOT NULL").
		Order("last_refreshed_at DESC").
		Take(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("latest_refreshed_at", err)
	}
	return latest.LastRefreshedAt, nil
}
