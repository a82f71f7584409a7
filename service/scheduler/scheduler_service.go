/**
 * @module SchedulerService
 * @description 定时刷新调度器，按Cron表达式周期性执行国家数据刷新
 * @architecture 基于 robfig/cron 的调度器模式
 * @stateFlow Start -> 按计划触发 -> (可选)获取分布式锁 -> 刷新 -> 释放锁
 * @rules 上一次刷新未结束时跳过本次触发；多实例部署时通过分布式锁保证同一时刻只有一个实例刷新
 * @dependencies github.com/robfig/cron/v3
 * @refs ../country/refresh_service.go, ../distributed_lock/redis_lock.go
 */

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"country-exchange-service/client"
	"country-exchange-service/service/country"
	"country-exchange-service/service/distributed_lock"

	"github.com/robfig/cron/v3"
)

const refreshLockKey = "countries_refresh"

// Refresher 刷新任务
type Refresher interface {
	Refresh(ctx context.Context) (*country.RefreshResult, error)
}

// SchedulerService 调度器服务
type SchedulerService struct {
	refresher Refresher
	spec      string
	locker    *distributed_lock.LockExecutor
	lockTTL   time.Duration
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewSchedulerService 创建调度器服务，lock 为空时不使用分布式锁
func NewSchedulerService(refresher Refresher, spec string, lock distributed_lock.DistributedLock, lockTTL time.Duration) *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())

	s := &SchedulerService{
		refresher: refresher,
		spec:      spec,
		lockTTL:   lockTTL,
		ctx:       ctx,
		cancel:    cancel,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
	if lock != nil {
		s.locker = distributed_lock.NewLockExecutor(lock)
	}
	return s
}

// Start 启动调度器
func (s *SchedulerService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("添加定时刷新任务失败: %w", err)
	}

	s.cron.Start()
	slog.Info("定时刷新调度器已启动", "cron", s.spec, "distributed_lock", s.locker != nil)
	return nil
}

// Stop 停止调度器，等待正在执行的刷新结束
func (s *SchedulerService) Stop() {
	slog.Info("停止定时刷新调度器")

	s.cancel()
	<-s.cron.Stop().Done()

	slog.Info("定时刷新调度器已停止")
}

// runOnce 执行一次计划刷新
func (s *SchedulerService) runOnce() {
	if s.locker == nil {
		s.refresh()
		return
	}

	executed, err := s.locker.ExecuteWithLock(s.ctx, refreshLockKey, s.lockTTL, func() error {
		s.refresh()
		return nil
	})
	if err != nil {
		slog.Error("定时刷新获取锁失败", "error", err)
		return
	}
	if !executed {
		slog.Info("其他实例正在刷新，跳过本次定时刷新")
	}
}

func (s *SchedulerService) refresh() {
	startTime := time.Now()
	result, err := s.refresher.Refresh(s.ctx)
	if err != nil {
		var unavailable *client.SourceUnavailableError
		if errors.As(err, &unavailable) {
			slog.Warn("定时刷新跳过：外部数据源不可用", "source", unavailable.Source, "error", err)
			return
		}
		slog.Error("定时刷新失败", "error", err)
		return
	}

	slog.Info("定时刷新完成",
		"total_countries", result.TotalCountries,
		"duration_ms", time.Since(startTime).Milliseconds())
}
