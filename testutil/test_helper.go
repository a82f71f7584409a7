/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, httptest
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"country-exchange-service/service/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
// 内存库每个连接都是独立的数据库，所以连接池固定为1
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get test database pool: %v", err))
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Country{}); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tdb.DB.Exec("DELETE FROM countries")
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// CountryOption 国家记录选项函数类型
type CountryOption func(*models.Country)

// WithRegion 设置地区
func WithRegion(region string) CountryOption {
	return func(c *models.Country) {
		c.Region = &region
	}
}

// WithCurrency 设置货币和汇率，rate<=0 表示汇率未知
func WithCurrency(code string, rate float64) CountryOption {
	return func(c *models.Country) {
		c.CurrencyCode = &code
		c.ExchangeRate = nil
		if rate > 0 {
			c.ExchangeRate = &rate
		}
	}
}

// WithGDP 设置估算GDP
func WithGDP(gdp float64) CountryOption {
	return func(c *models.Country) {
		c.EstimatedGDP = &gdp
	}
}

// WithoutGDP 估算GDP为空
func WithoutGDP() CountryOption {
	return func(c *models.Country) {
		c.EstimatedGDP = nil
	}
}

// WithRefreshedAt 设置刷新时间
func WithRefreshedAt(ts time.Time) CountryOption {
	return func(c *models.Country) {
		c.LastRefreshedAt = &ts
	}
}

// CreateCountry 创建测试国家记录
func (f *TestDataFactory) CreateCountry(name string, opts ...CountryOption) *models.Country {
	lower := models.LowerName(name)
	now := time.Now().UTC()
	gdp := 0.0
	country := &models.Country{
		Name:            &name,
		NameLower:       &lower,
		Population:      1000000,
		EstimatedGDP:    &gdp,
		LastRefreshedAt: &now,
	}

	// 应用选项
	for _, opt := range opts {
		opt(country)
	}

	if err := f.DB.Create(country).Error; err != nil {
		panic(fmt.Sprintf("failed to create test country: %v", err))
	}

	return country
}

// FakeUpstream 模拟外部数据源
type FakeUpstream struct {
	Server *httptest.Server

	mu     sync.Mutex
	status int
	body   string
	delay  time.Duration
	hits   atomic.Int32
}

// NewFakeUpstream 创建模拟外部数据源，默认返回200和给定内容
func NewFakeUpstream(t *testing.T, body string) *FakeUpstream {
	t.Helper()
	u := &FakeUpstream{status: http.StatusOK, body: body}
	u.Server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.Server.Close)
	return u
}

// URL 服务地址
func (u *FakeUpstream) URL() string {
	return u.Server.URL
}

// Respond 修改响应
func (u *FakeUpstream) Respond(status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
	u.body = body
}

// Delay 设置响应延迟
func (u *FakeUpstream) Delay(d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.delay = d
}

// Hits 请求次数
func (u *FakeUpstream) Hits() int {
	return int(u.hits.Load())
}

func (u *FakeUpstream) handle(w http.ResponseWriter, r *http.Request) {
	u.hits.Add(1)

	u.mu.Lock()
	status, body, delay := u.status, u.body, u.delay
	u.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
