package models

// RawCountry 国家数据源返回的单条原始记录，字段类型不做假设
type RawCountry map[string]interface{}

// RateTable 货币代码到汇率的映射
type RateTable map[string]float64

// Lookup 查询汇率
func (r RateTable) Lookup(code string) (float64, bool) {
	rate, ok := r[code]
	return rate, ok
}
