/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 */

package api

import (
	"country-exchange-service/api/controllers"
	"country-exchange-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r chi.Router, app *service.App) {
	// 基础中间件
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	// 服务说明和健康检查
	healthController := controllers.NewHealthController(app.DB)
	r.Get("/", healthController.Index)
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 国家数据
	r.Route("/countries", func(r chi.Router) {
		countryController := controllers.NewCountryController(app.RefreshService, app.QueryService, app.Summary.Path())

		r.Post("/refresh", countryController.Refresh)
		r.Get("/", countryController.List)
		r.Get("/status", countryController.Status)
		r.Get("/image", countryController.Image)
		r.Get("/{name}", countryController.Get)
		r.Delete("/{name}", countryController.Delete)
	})
}
