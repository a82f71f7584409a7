/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移和各业务服务的组装
 * @architecture 分层架构 - 服务层
 * @stateFlow 加载配置 -> 连接数据库 -> 迁移 -> 组装服务 -> 启动调度器
 * @rules 所有依赖通过参数注入，不使用包级全局变量
 * @dependencies gorm.io/gorm
 */

package service

import (
	"fmt"
	"log/slog"

	"country-exchange-service/client"
	"country-exchange-service/service/config"
	"country-exchange-service/service/country"
	"country-exchange-service/service/database"
	"country-exchange-service/service/distributed_lock"
	"country-exchange-service/service/scheduler"
	"country-exchange-service/service/summary"

	"gorm.io/gorm"
)

// App 组装好的服务集合
type App struct {
	Config         *config.Config
	DB             *gorm.DB
	RefreshService *country.RefreshService
	QueryService   *country.QueryService
	Summary        *summary.ImageGenerator
	Scheduler      *scheduler.SchedulerService

	lock *distributed_lock.RedisLock
}

// Init 初始化数据库和所有服务
func Init(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Info("数据库连接成功", "driver", cfg.Database.Driver, "pool_size", cfg.Database.PoolSize)

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	app := NewApp(cfg, db, client.NewExternalSourceClient(cfg.Sources.CountriesURL, cfg.Sources.RatesURL, cfg.Sources.Timeout))

	if cfg.Refresh.Cron != "" {
		if err := app.startScheduler(); err != nil {
			app.Close()
			return nil, err
		}
	}

	slog.Info("服务初始化完成")
	return app, nil
}

// NewApp 用已有的数据库连接和数据源组装服务
func NewApp(cfg *config.Config, db *gorm.DB, fetcher country.SourceFetcher) *App {
	store := country.NewGormStore(db)
	imageGenerator := summary.NewImageGenerator(cfg.Summary.CacheDir)

	return &App{
		Config:         cfg,
		DB:             db,
		RefreshService: country.NewRefreshService(fetcher, store, country.NewNormalizer(nil), imageGenerator),
		QueryService:   country.NewQueryService(store),
		Summary:        imageGenerator,
	}
}

// startScheduler 启动定时刷新，配置了Redis时使用分布式锁
func (a *App) startScheduler() error {
	var lock distributed_lock.DistributedLock
	if a.Config.Redis.Enabled() {
		redisLock, err := distributed_lock.NewRedisLock(a.Config.Redis)
		if err != nil {
			return err
		}
		a.lock = redisLock
		lock = redisLock
	}

	a.Scheduler = scheduler.NewSchedulerService(a.RefreshService, a.Config.Refresh.Cron, lock, a.Config.Refresh.LockTTL)
	return a.Scheduler.Start()
}

// Close 释放资源
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.lock != nil {
		if err := a.lock.Close(); err != nil {
			slog.Warn("关闭Redis客户端失败", "error", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
