/*
 * @module service/country/normalizer
 * @description 记录标准化，将一条原始国家数据和汇率表合并为入库记录
 * @architecture 纯函数 - 除随机乘数外无副作用
 * @rules 无货币时 GDP 为 0；货币不在汇率表中时汇率和 GDP 均为空
 * @dependencies github.com/spf13/cast
 */

package country

import (
	"math"
	"strconv"
	"strings"
	"time"

	"country-exchange-service/service/models"

	"github.com/spf13/cast"
)

// GDP 随机乘数范围
const (
	MinGDPMultiplier = 1000.0
	MaxGDPMultiplier = 2000.0
)

// Normalizer 记录标准化器
type Normalizer struct {
	random RandomSource
}

// NewNormalizer 创建标准化器，random 为空时使用时间种子
func NewNormalizer(random RandomSource) *Normalizer {
	if random == nil {
		random = NewTimeSeededRandomSource()
	}
	return &Normalizer{random: random}
}

// Normalize 标准化一条原始记录
func (n *Normalizer) Normalize(raw models.RawCountry, rates models.RateTable, batchTime time.Time) models.Country {
	record := models.Country{
		Name:            stringField(raw, "name"),
		Capital:         stringField(raw, "capital"),
		Region:          stringField(raw, "region"),
		Population:      population(raw["population"]),
		CurrencyCode:    firstCurrencyCode(raw["currencies"]),
		FlagURL:         flagURL(raw),
		LastRefreshedAt: &batchTime,
	}

	if record.Name != nil {
		lower := models.LowerName(*record.Name)
		record.NameLower = &lower
	}

	if record.CurrencyCode == nil {
		zero := 0.0
		record.EstimatedGDP = &zero
		return record
	}

	rate, ok := rates.Lookup(*record.CurrencyCode)
	if !ok {
		return record
	}

	record.ExchangeRate = &rate
	record.EstimatedGDP = n.estimateGDP(record.Population, rate)
	return record
}

// estimateGDP population × U(1000,2000) / rate，汇率为0时返回空
func (n *Normalizer) estimateGDP(population int64, rate float64) *float64 {
	if rate == 0 {
		return nil
	}
	multiplier := MinGDPMultiplier + n.random.Float64()*(MaxGDPMultiplier-MinGDPMultiplier)
	gdp := float64(population) * multiplier / rate
	if math.IsNaN(gdp) || math.IsInf(gdp, 0) {
		return nil
	}
	return &gdp
}

func stringField(raw models.RawCountry, key string) *string {
	s, ok := raw[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// population 按十进制解析人口，结果截断到 [0, MaxInt64]
func population(value interface{}) int64 {
	var (
		f   float64
		err error
	)
	if s, ok := value.(string); ok {
		// 字符串只接受十进制，不识别 0x、0 前缀的进制写法
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	} else {
		f, err = cast.ToFloat64E(value)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

func firstCurrencyCode(value interface{}) *string {
	currencies, ok := value.([]interface{})
	if !ok || len(currencies) == 0 {
		return nil
	}
	first, ok := currencies[0].(map[string]interface{})
	if !ok {
		return nil
	}
	code, ok := first["code"].(string)
	if !ok || code == "" {
		return nil
	}
	return &code
}

func flagURL(raw models.RawCountry) *string {
	if flag := stringField(raw, "flag"); flag != nil {
		return flag
	}
	return stringField(raw, "flag_url")
}
