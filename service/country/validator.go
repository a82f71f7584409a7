package country

import "country-exchange-service/service/models"

// ValidateRecord 检查记录的必填字段，返回字段到错误描述的映射，无问题时返回 nil
// 刷新流程只用它记录告警，不会因此拒绝写入
func ValidateRecord(record models.Country) map[string]string {
	errs := make(map[string]string)
	if record.Name == nil || *record.Name == "" {
		errs["name"] = "is required"
	}
	if record.CurrencyCode == nil || *record.CurrencyCode == "" {
		errs["currency_code"] = "is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
