/*
 * @module service/models/country
 * @description 国家汇率数据模型，一行对应一个国家，按小写名称唯一
 * @architecture DDD领域驱动设计 - 实体模型
 * @stateFlow 刷新时整表删除后重建，也可按名称单独删除
 * @rules name_lower 全表唯一；同一批次的 last_refreshed_at 相同
 * @dependencies gorm.io/gorm, github.com/google/uuid, golang.org/x/text
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Country 国家记录
type Country struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name            *string    `json:"name" gorm:"size:255" example:"Kenya"`
	NameLower       *string    `json:"name_lower" gorm:"size:255;uniqueIndex:uq_name_lower" example:"kenya"`
	Capital         *string    `json:"capital" gorm:"size:255" example:"Nairobi"`
	Region          *string    `json:"region" gorm:"size:255;index" example:"Africa"`
	Population      int64      `json:"population" gorm:"not null;default:0" example:"50000000"`
	CurrencyCode    *string    `json:"currency_code" gorm:"size:10;index" example:"KES"`
	ExchangeRate    *float64   `json:"exchange_rate" example:"110.5"`
	EstimatedGDP    *float64   `json:"estimated_gdp" gorm:"column:estimated_gdp" example:"678733031.67"`
	FlagURL         *string    `json:"flag_url" gorm:"type:text" example:"https://flagcdn.com/ke.svg"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName 表名
func (Country) TableName() string {
	return "countries"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (c *Country) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// DisplayName 用于日志和图片展示的名称
func (c *Country) DisplayName() string {
	if c.Name == nil {
		return "(unnamed)"
	}
	return *c.Name
}

// LowerName 名称小写化，入库和查询必须使用同一规则
func LowerName(name string) string {
	return cases.Lower(language.Und).String(name)
}
