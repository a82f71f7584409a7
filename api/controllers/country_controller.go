/*
 * @module api/controllers/country_controller
 * @description 国家数据控制器，处理刷新、列表、状态、汇总图片、按名称查询和删除
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程
 * @rules 外部数据源不可用返回503；其他异常只返回通用500，详细信息写日志
 * @dependencies country-exchange-service/service/country, github.com/go-chi/render
 */

package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"country-exchange-service/client"
	"country-exchange-service/service/country"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// CountryController 国家数据控制器
type CountryController struct {
	refreshService *country.RefreshService
	queryService   *country.QueryService
	imagePath      string
}

// NewCountryController 创建国家数据控制器实例
func NewCountryController(refreshService *country.RefreshService, queryService *country.QueryService, imagePath string) *CountryController {
	return &CountryController{
		refreshService: refreshService,
		queryService:   queryService,
		imagePath:      imagePath,
	}
}

// Refresh 刷新国家数据
// @Summary 刷新国家数据
// @Description 拉取国家列表和汇率，整表替换并生成汇总图片
// @Tags 国家
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 503 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/refresh [post]
func (c *CountryController) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := c.refreshService.Refresh(r.Context())
	if err != nil {
		var unavailable *client.SourceUnavailableError
		if errors.As(err, &unavailable) {
			renderError(w, r, http.StatusServiceUnavailable, "External data source unavailable", unavailable.Details())
			return
		}
		slog.Error("刷新国家数据失败", "error", err, "request_id", middleware.GetReqID(r.Context()))
		renderInternalError(w, r)
		return
	}

	render.JSON(w, r, RefreshResponse{
		Message:         "Refresh successful",
		TotalCountries:  result.TotalCountries,
		LastRefreshedAt: formatTimestamp(result.LastRefreshedAt),
	})
}

// List 查询国家列表
// @Summary 查询国家列表
// @Description 按地区、货币过滤，sort=gdp_desc 时按估算GDP降序
// @Tags 国家
// @Produce json
// @Param region query string false "地区"
// @Param currency query string false "货币代码"
// @Param sort query string false "排序方式" Enums(gdp_desc)
// @Success 200 {array} models.Country
// @Failure 500 {object} ErrorResponse
// @Router /countries [get]
func (c *CountryController) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := country.ListFilter{
		Region:      query.Get("region"),
		Currency:    query.Get("currency"),
		SortGDPDesc: query.Get("sort") == "gdp_desc",
	}

	countries, err := c.queryService.List(r.Context(), filter)
	if err != nil {
		slog.Error("查询国家列表失败", "error", err, "request_id", middleware.GetReqID(r.Context()))
		renderInternalError(w, r)
		return
	}

	render.JSON(w, r, countries)
}

// Status 数据状态
// @Summary 数据状态
// @Description 返回当前记录数和最近刷新时间
// @Tags 国家
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/status [get]
func (c *CountryController) Status(w http.ResponseWriter, r *http.Request) {
	status, err := c.queryService.Status(r.Context())
	if err != nil {
		slog.Error("查询数据状态失败", "error", err, "request_id", middleware.GetReqID(r.Context()))
		renderInternalError(w, r)
		return
	}

	response := StatusResponse{TotalCountries: status.TotalCountries}
	if status.LastRefreshedAt != nil {
		ts := formatTimestamp(*status.LastRefreshedAt)
		response.LastRefreshedAt = &ts
	}
	render.JSON(w, r, response)
}

// Image 汇总图片
// @Summary 汇总图片
// @Description 返回最近一次刷新生成的汇总图片
// @Tags 国家
// @Produce png
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /countries/image [get]
func (c *CountryController) Image(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(c.imagePath)
	if err != nil || info.IsDir() {
		renderError(w, r, http.StatusNotFound, "Summary image not found", "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, c.imagePath)
}

// Get 按名称查询国家
// @Summary 按名称查询国家
// @Description 名称不区分大小写
// @Tags 国家
// @Produce json
// @Param name path string true "国家名称"
// @Success 200 {object} models.Country
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/{name} [get]
func (c *CountryController) Get(w http.ResponseWriter, r *http.Request) {
	result, err := c.queryService.GetByName(r.Context(), nameParam(r))
	if errors.Is(err, country.ErrCountryNotFound) {
		renderError(w, r, http.StatusNotFound, "Country not found", "")
		return
	}
	if err != nil {
		slog.Error("查询国家失败", "error", err, "request_id", middleware.GetReqID(r.Context()))
		renderInternalError(w, r)
		return
	}

	render.JSON(w, r, result)
}

// Delete 按名称删除国家
// @Summary 按名称删除国家
// @Description 名称不区分大小写
// @Tags 国家
// @Param name path string true "国家名称"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/{name} [delete]
func (c *CountryController) Delete(w http.ResponseWriter, r *http.Request) {
	err := c.queryService.DeleteByName(r.Context(), nameParam(r))
	if errors.Is(err, country.ErrCountryNotFound) {
		renderError(w, r, http.StatusNotFound, "Country not found", "")
		return
	}
	if err != nil {
		slog.Error("删除国家失败", "error", err, "request_id", middleware.GetReqID(r.Context()))
		renderInternalError(w, r)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func nameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
