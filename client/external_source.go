/*
 * @module client/external_source
 * @description 外部数据源客户端，拉取国家列表和汇率表
 * @architecture 简单HTTP客户端模式 - 单次GET请求，无重试
 * @stateFlow 发送请求 -> 校验状态码 -> 解析响应 -> 返回数据或不可用错误
 * @rules 超时默认15秒；任何失败都以 SourceUnavailableError 返回并标明数据源
 * @dependencies net/http, github.com/tidwall/gjson, github.com/spf13/cast
 */

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"country-exchange-service/service/models"
	"country-exchange-service/service/monitoring"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

const (
	SourceCountries = "Countries API"
	SourceRates     = "Rates API"

	DefaultTimeout = 15 * time.Second
)

// SourceUnavailableError 外部数据源不可用
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("外部数据源不可用 [%s]: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Details 返回给调用方的说明
func (e *SourceUnavailableError) Details() string {
	return "Could not fetch data from " + e.Source
}

// ExternalSourceClient 外部数据源客户端
type ExternalSourceClient struct {
	countriesURL string
	ratesURL     string
	httpClient   *http.Client
}

// NewExternalSourceClient 创建外部数据源客户端，timeout<=0 时使用默认15秒
func NewExternalSourceClient(countriesURL, ratesURL string, timeout time.Duration) *ExternalSourceClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExternalSourceClient{
		countriesURL: countriesURL,
		ratesURL:     ratesURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchCountries 拉取国家列表
func (c *ExternalSourceClient) FetchCountries(ctx context.Context) ([]models.RawCountry, error) {
	body, err := c.get(ctx, SourceCountries, c.countriesURL)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, c.fail(SourceCountries, errors.New("响应不是合法JSON"))
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, c.fail(SourceCountries, fmt.Errorf("响应类型错误: %s", root.Type))
	}

	// 单个元素不是对象时按全空记录处理，不影响整批写入
	countries := make([]models.RawCountry, 0)
	malformed := 0
	root.ForEach(func(_, value gjson.Result) bool {
		fields, ok := value.Value().(map[string]interface{})
		if !ok {
			malformed++
			fields = map[string]interface{}{}
		}
		countries = append(countries, models.RawCountry(fields))
		return true
	})

	if malformed > 0 {
		slog.Warn("国家列表中存在非对象元素，按空记录处理", "count", malformed)
	}
	slog.Debug("国家列表拉取完成", "count", len(countries))
	return countries, nil
}

// FetchRates 拉取汇率表
// 兼容两种格式：直接的 {code: rate} 映射，或 {"rates": {code: rate}} 包装
func (c *ExternalSourceClient) FetchRates(ctx context.Context) (models.RateTable, error) {
	body, err := c.get(ctx, SourceRates, c.ratesURL)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, c.fail(SourceRates, errors.New("响应不是合法JSON"))
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, c.fail(SourceRates, fmt.Errorf("响应类型错误: %s", root.Type))
	}

	rates := root
	if envelope := root.Get("rates"); envelope.IsObject() {
		rates = envelope
	}

	table := make(models.RateTable)
	rates.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			table[key.String()] = value.Float()
		case gjson.String:
			rate, err := cast.ToFloat64E(value.String())
			if err != nil {
				slog.Warn("忽略无法解析的汇率", "currency", key.String(), "value", value.Raw)
				return true
			}
			table[key.String()] = rate
		default:
			slog.Warn("忽略无法解析的汇率", "currency", key.String(), "value", value.Raw)
		}
		return true
	})

	slog.Debug("汇率表拉取完成", "count", len(table))
	return table, nil
}

// get 发送GET请求并返回响应体
func (c *ExternalSourceClient) get(ctx context.Context, source, url string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		monitoring.ObserveExternalFetch(source, time.Since(startTime))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(source, fmt.Errorf("创建HTTP请求失败: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(source, fmt.Errorf("发送HTTP请求失败: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(source, fmt.Errorf("HTTP状态码异常: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(source, fmt.Errorf("读取响应失败: %w", err))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, c.fail(source, errors.New("响应为空"))
	}

	return trimmed, nil
}

func (c *ExternalSourceClient) fail(source string, err error) error {
	if errors.Is(err, context.Canceled) {
		// 调用方已取消（例如另一个数据源先失败），不计为该数据源的失败
		slog.Debug("外部数据源请求已取消", "source", source)
		return &SourceUnavailableError{Source: source, Err: err}
	}
	monitoring.IncExternalFetchFailure(source)
	slog.Error("外部数据源请求失败", "source", source, "error", err)
	return &SourceUnavailableError{Source: source, Err: err}
}
