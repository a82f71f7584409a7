package country

import (
	"context"
	"time"

	"country-exchange-service/service/models"
)

// Status 数据状态
type Status struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// QueryService 国家数据查询服务，无状态，直接读写共享连接池
type QueryService struct {
	store *GormStore
}

// NewQueryService 创建查询服务
func NewQueryService(store *GormStore) *QueryService {
	return &QueryService{store: store}
}

// List 按地区、货币过滤，可按估算GDP降序
func (s *QueryService) List(ctx context.Context, filter ListFilter) ([]models.Country, error) {
	return s.store.List(ctx, filter)
}

// GetByName 按名称查询，不区分大小写
func (s *QueryService) GetByName(ctx context.Context, name string) (*models.Country, error) {
	return s.store.FindByNameLower(ctx, models.LowerName(name))
}

// DeleteByName 按名称删除，不区分大小写
func (s *QueryService) DeleteByName(ctx context.Context, name string) error {
	return s.store.DeleteByNameLower(ctx, models.LowerName(name))
}

// Status 当前记录数和最近刷新时间
func (s *QueryService) Status(ctx context.Context) (*Status, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.LatestRefreshedAt(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{TotalCountries: total, LastRefreshedAt: latest}, nil
}
