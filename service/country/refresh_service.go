/*
 * @module service/country/refresh_service
 * @description 刷新流程：并发拉取两个外部数据源 -> 标准化 -> 事务内整表替换 -> 生成汇总图片
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 拉取 -> 标准化 -> 去重 -> 写入 -> 统计 -> 汇总图片 -> 返回
 * @rules 任一数据源不可用时不写入任何数据；写入全部成功或全部回滚；不做重试
 * @dependencies golang.org/x/sync/errgroup
 */

package country

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"country-exchange-service/client"
	"country-exchange-service/service/models"
	"country-exchange-service/service/monitoring"

	"golang.org/x/sync/errgroup"
)

const topGDPLimit = 5

// SourceFetcher 外部数据源
type SourceFetcher interface {
	FetchCountries(ctx context.Context) ([]models.RawCountry, error)
	FetchRates(ctx context.Context) (models.RateTable, error)
}

// SummaryRenderer 汇总图片生成器
type SummaryRenderer interface {
	Render(ctx context.Context, total int64, top []models.Country, timestamp time.Time) error
}

// RefreshResult 刷新结果
type RefreshResult struct {
	TotalCountries  int64     `json:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// RefreshService 刷新服务
type RefreshService struct {
	fetcher    SourceFetcher
	store      Store
	normalizer *Normalizer
	summary    SummaryRenderer
	now        func() time.Time
}

// NewRefreshService 创建刷新服务，summary 可以为空
func NewRefreshService(fetcher SourceFetcher, store Store, normalizer *Normalizer, summary SummaryRenderer) *RefreshService {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &RefreshService{
		fetcher:    fetcher,
		store:      store,
		normalizer: normalizer,
		summary:    summary,
		now:        time.Now,
	}
}

// Refresh 执行一次完整刷新
func (s *RefreshService) Refresh(ctx context.Context) (result *RefreshResult, err error) {
	startTime := time.Now()
	defer func() {
		outcome := monitoring.RefreshResultSuccess
		var unavailable *client.SourceUnavailableError
		switch {
		case errors.As(err, &unavailable):
			outcome = monitoring.RefreshResultUnavailable
		case err != nil:
			outcome = monitoring.RefreshResultError
		}
		monitoring.ObserveRefresh(outcome, time.Since(startTime))
	}()

	countries, rates, err := s.fetchSources(ctx)
	if err != nil {
		return nil, err
	}

	batchTime := s.now().UTC().Truncate(time.Microsecond)
	records := s.normalizeAll(countries, rates, batchTime)

	slog.Info("开始写入国家数据", "fetched", len(countries), "records", len(records), "rates", len(rates))

	if err := s.store.ReplaceAll(ctx, records); err != nil {
		return nil, err
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	monitoring.SetStoredCountries(total)

	top, err := s.store.TopByGDP(ctx, topGDPLimit)
	if err != nil {
		return nil, err
	}

	if s.summary != nil {
		if err := s.summary.Render(ctx, total, top, batchTime); err != nil {
			// 数据已提交，图片失败不影响刷新结果
			monitoring.IncSummaryRenderFailure()
			slog.Error("生成汇总图片失败", "error", err)
		}
	}

	slog.Info("刷新完成",
		"total_countries", total,
		"last_refreshed_at", batchTime,
		"duration_ms", time.Since(startTime).Milliseconds())

	return &RefreshResult{
		TotalCountries:  total,
		LastRefreshedAt: batchTime,
	}, nil
}

// fetchSources 并发拉取国家列表和汇率，任一失败立即取消另一个
func (s *RefreshService) fetchSources(ctx context.Context) ([]models.RawCountry, models.RateTable, error) {
	var (
		countries []models.RawCountry
		rates     models.RateTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		countries, err = s.fetcher.FetchCountries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.fetcher.FetchRates(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return countries, rates, nil
}

// normalizeAll 标准化并按小写名称去重，重复名称保留后出现的记录
func (s *RefreshService) normalizeAll(countries []models.RawCountry, rates models.RateTable, batchTime time.Time) []models.Country {
	normalized := make([]models.Country, len(countries))
	last := make(map[string]int, len(countries))
	invalid := 0

	for i, raw := range countries {
		normalized[i] = s.normalizer.Normalize(raw, rates, batchTime)
		if errs := ValidateRecord(normalized[i]); errs != nil {
			invalid++
			slog.Debug("记录缺少字段", "name", normalized[i].DisplayName(), "errors", errs)
		}
		if normalized[i].NameLower != nil {
			last[*normalized[i].NameLower] = i
		}
	}

	records := make([]models.Country, 0, len(normalized))
	for i, record := range normalized {
		if record.NameLower != nil && last[*record.NameLower] != i {
			continue
		}
		records = append(records, record)
	}

	if invalid > 0 {
		slog.Warn("部分记录缺少字段，仍然写入", "count", invalid)
	}
	if dropped := len(normalized) - len(records); dropped > 0 {
		slog.Warn("存在重复的国家名称，保留最后一条", "dropped", dropped)
	}
	return records
}
