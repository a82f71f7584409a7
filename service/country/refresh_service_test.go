/*
 * @module service/country/refresh_service_test
 * @description 刷新流程单元测试
 * @architecture 测试层 - Mock外部数据源，使用内存SQLite验证事务行为
 * @stateFlow 准备数据源 -> 执行刷新 -> 验证表内容和返回值
 * @rules 覆盖不可用数据源、整表替换、回滚、去重等场景
 * @dependencies testing, testify, gorm, country-exchange-service/testutil
 */

package country

import (
	"context"
	"errors"
	"testing"
	"time"

	"country-exchange-service/client"
	"country-exchange-service/service/models"
	"country-exchange-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// MockFetcher 模拟外部数据源
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchCountries(ctx context.Context) ([]models.RawCountry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RawCountry), args.Error(1)
}

func (m *MockFetcher) FetchRates(ctx context.Context) (models.RateTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.RateTable), args.Error(1)
}

// MockSummary 模拟汇总图片生成器
type MockSummary struct {
	mock.Mock
}

func (m *MockSummary) Render(ctx context.Context, total int64, top []models.Country, timestamp time.Time) error {
	args := m.Called(ctx, total, top, timestamp)
	return args.Error(0)
}

func currency(code string) []interface{} {
	return []interface{}{map[string]interface{}{"code": code}}
}

type RefreshServiceTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDB
	store   *GormStore
	fetcher *MockFetcher
	summary *MockSummary
	service *RefreshService
}

func (s *RefreshServiceTestSuite) SetupTest() {
	s.testDB = testutil.NewTestDB()
	s.store = NewGormStore(s.testDB.DB)
	s.fetcher = new(MockFetcher)
	s.summary = new(MockSummary)
	s.service = NewRefreshService(s.fetcher, s.store, NewNormalizer(NewRandomSource(99)), s.summary)
	s.service.now = func() time.Time { return batchTime }
}

func (s *RefreshServiceTestSuite) TearDownTest() {
	s.testDB.Close()
}

func (s *RefreshServiceTestSuite) countRows() int64 {
	var total int64
	s.Require().NoError(s.testDB.DB.Model(&models.Country{}).Count(&total).Error)
	return total
}

func (s *RefreshServiceTestSuite) TestRefresh_Success() {
	s.fetcher.On("FetchCountries", mock.Anything).Return([]models.RawCountry{
		{"name": "Kenya", "population": float64(50000000), "currencies": currency("KES")},
		{"name": "Nigeria", "population": float64(200000000), "currencies": currency("NGN")},
		{"name": "Antarctica", "population": float64(1000), "currencies": []interface{}{}},
		{"name": "Atlantis", "population": float64(10), "currencies": currency("ATL")},
	}, nil)
	s.fetcher.On("FetchRates", mock.Anything).Return(models.RateTable{"KES": 110.5, "NGN": 1600}, nil)
	s.summary.On("Render", mock.Anything, int64(4), mock.Anything, batchTime).Return(nil)

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(4), result.TotalCountries)
	s.Equal(batchTime, result.LastRefreshedAt)

	ke, err := s.store.FindByNameLower(context.Background(), "kenya")
	s.Require().NoError(err)
	s.Equal("KES", *ke.CurrencyCode)
	s.Equal(110.5, *ke.ExchangeRate)
	s.GreaterOrEqual(*ke.EstimatedGDP, 50000000*1000/110.5)
	s.LessOrEqual(*ke.EstimatedGDP, 50000000*2000/110.5)
	s.True(batchTime.Equal(*ke.LastRefreshedAt))

	atl, err := s.store.FindByNameLower(context.Background(), "atlantis")
	s.Require().NoError(err)
	s.Nil(atl.ExchangeRate)
	s.Nil(atl.EstimatedGDP)

	// 排名只包含GDP非空的记录
	top := s.summary.Calls[0].Arguments.Get(2).([]models.Country)
	s.Len(top, 3)
	for i := 1; i < len(top); i++ {
		s.GreaterOrEqual(*top[i-1].EstimatedGDP, *top[i].EstimatedGDP)
	}
	s.summary.AssertExpectations(s.T())
}

func (s *RefreshServiceTestSuite) TestRefresh_ReplacesPreviousBatch() {
	factory := testutil.NewTestDataFactory(s.testDB.DB)
	factory.CreateCountry("Oldland")
	factory.CreateCountry("Kenya", testutil.WithGDP(1))

	s.fetcher.On("FetchCountries", mock.Anything).Return([]models.RawCountry{
		{"name": "Kenya", "population": float64(50000000), "currencies": currency("KES")},
	}, nil)
	s.fetcher.On("FetchRates", mock.Anything).Return(models.RateTable{"KES": 110.5}, nil)
	s.summary.On("Render", mock.Anything, int64(1), mock.Anything, batchTime).Return(nil)

	_, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)

	s.Equal(int64(1), s.countRows())
	_, err = s.store.FindByNameLower(context.Background(), "oldland")
	s.ErrorIs(err, ErrCountryNotFound)
}

func (s *RefreshServiceTestSuite) TestRefresh_CaseDuplicatesCollapse() {
	s.fetcher.On("FetchCountries", mock.Anything).Return([]models.RawCountry{
		{"name": "Kenya", "population": float64(1), "currencies": []interface{}{}},
		{"name": "KENYA", "population": float64(2), "currencies": []interface{}{}},
		{"population": float64(3)},
		{"population": float64(4)},
	}, nil)
	s.fetcher.On("FetchRates", mock.Anything).Return(models.RateTable{}, nil)
	s.summary.On("Render", mock.Anything, int64(3), mock.Anything, batchTime).Return(nil)

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(3), result.TotalCountries)

	ke, err := s.store.FindByNameLower(context.Background(), "kenya")
	s.Require().NoError(err)
	s.Equal("KENYA", *ke.Name)
	s.Equal(int64(2), ke.Population)
}

func (s *RefreshServiceTestSuite) TestRefresh_NonObjectElementsStoredAsEmptyRecords() {
	countries := testutil.NewFakeUpstream(s.T(), `[{"name":"Kenya","population":50000000,"currencies":[{"code":"KES"}]},"oops",7]`)
	rates := testutil.NewFakeUpstream(s.T(), `{"rates":{"KES":110.5}}`)
	fetcher := client.NewExternalSourceClient(countries.URL(), rates.URL(), time.Second)
	s.service.fetcher = fetcher
	s.summary.On("Render", mock.Anything, int64(3), mock.Anything, batchTime).Return(nil)

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(3), result.TotalCountries)

	_, err = s.store.FindByNameLower(context.Background(), "kenya")
	s.NoError(err)

	var empty []models.Country
	s.Require().NoError(s.testDB.DB.Where("name IS NULL").Find(&empty).Error)
	s.Require().Len(empty, 2)
	for _, record := range empty {
		s.Nil(record.NameLower)
		s.Nil(record.CurrencyCode)
		s.Equal(int64(0), record.Population)
		s.Require().NotNil(record.EstimatedGDP)
		s.Equal(0.0, *record.EstimatedGDP)
	}
}

func (s *RefreshServiceTestSuite) TestRefresh_SourceUnavailable() {
	factory := testutil.NewTestDataFactory(s.testDB.DB)
	factory.CreateCountry("Oldland")

	s.fetcher.On("FetchCountries", mock.Anything).Return([]models.RawCountry{{"name": "Kenya"}}, nil)
	s.fetcher.On("FetchRates", mock.Anything).Return(nil, &client.SourceUnavailableError{
		Source: client.SourceRates,
		Err:    errors.New("timeout"),
	})

	result, err := s.service.Refresh(context.Background())
	s.Nil(result)

	var unavailable *client.SourceUnavailableError
	s.Require().True(errors.As(err, &unavailable))
	s.Equal(client.SourceRates, unavailable.Source)

	s.Equal(int64(1), s.countRows())
	s.summary.AssertNotCalled(s.T(), "Render", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RefreshServiceTestSuite) TestRefresh_WriteFailureKeepsOldRows() {
	factory := testutil.NewTestDataFactory(s.testDB.DB)
	factory.CreateCountry("Oldland")
	factory.CreateCountry("Olderland")

	// 第二批插入时失败，第一批已经写入事务
	s.store.batchSize = 1
	inserts := 0
	err := s.testDB.DB.Callback().Create().Before("gorm:create").Register("test:fail_second_batch", func(tx *gorm.DB) {
		inserts++
		if inserts == 2 {
			tx.AddError(errors.New("disk full"))
		}
	})
	s.Require().NoError(err)

	s.fetcher.On("FetchCountries", mock.Anything).Return([]models.RawCountry{
		{"name": "Kenya", "population": float64(1), "currencies": []interface{}{}},
		{"name": "Ghana", "population": float64(2), "currencies": []interface{}{}},
		{"name": "Togo", "population": float64(3), "currencies": []interface{}{}},
	}, nil)
	s.fetcher.On("FetchRates", mock.Anything).Return(models.RateTable{}, nil)

	result, err := s.service.Refresh(context.Background())
	s.Nil(result)

	var storageErr *StorageError
	s.Require().True(errors.As(err, &storageErr))
	s.Equal("insert", storageErr.Op)

	s.Require().NoError(s.testDB.DB.Callback().Create().Remove("test:fail_second_batch"))

	s.Equal(int64(2), s.countRows())
	_, err = s.store.FindByNameLower(context.Background(), "kenya")
	s.ErrorIs(err, ErrCountryNotFound)
	_, err = s.store.FindByNameLower(context.Background(), "oldland")
	s.NoError(err)
	s.summary.AssertNotCalled(s.T(), "Render", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RefreshServiceTestSuite) TestRefresh_SummaryFailureDoesNotFail() {
	s.fetcher.On("FetchCountries", mock.Anything).Return([]models.RawCountry{
		{"name": "Kenya", "population": float64(1), "currencies": []interface{}{}},
	}, nil)
	s.fetcher.On("FetchRates", mock.Anything).Return(models.RateTable{}, nil)
	s.summary.On("Render", mock.Anything, int64(1), mock.Anything, batchTime).Return(errors.New("read-only fs"))

	result, err := s.service.Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(1), result.TotalCountries)
}

func TestRefreshServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RefreshServiceTestSuite))
}

func TestFetchSources_FailFast(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchCountries", mock.Anything).Return(nil, &client.SourceUnavailableError{
		Source: client.SourceCountries,
		Err:    errors.New("connection refused"),
	})
	fetcher.On("FetchRates", mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}).Return(nil, context.Canceled)

	service := NewRefreshService(fetcher, nil, nil, nil)

	start := time.Now()
	_, _, err := service.fetchSources(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)

	var unavailable *client.SourceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, client.SourceCountries, unavailable.Source)
}
