package main

import (
	"country-exchange-service/api"
	_ "country-exchange-service/docs"
	"country-exchange-service/logger"
	"country-exchange-service/service"
	"country-exchange-service/service/config"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title 国家货币与汇率服务 API
// @version 1.0
// @description 拉取国家信息和汇率，合并入库并估算GDP，提供查询、删除和汇总图片接口
// @BasePath /
func main() {
	cfg := config.Load()
	logger.InitLogger(cfg.LogLevel)

	app, err := service.Init(cfg)
	if err != nil {
		slog.Error("服务初始化失败", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if cfg.BaseContext != "" {
		mux.Route(cfg.BaseContext, func(r chi.Router) {
			api.InitRoute(r, app)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger/*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux, app)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger/*", httpSwagger.WrapHandler)
	}

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(cfg.ListenPort), mux)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		slog.Info("收到退出信号，正在关闭服务")
		if err := s.GracefulStop(); err != nil {
			slog.Error("关闭服务失败", "error", err)
		}
	}()

	slog.Info("服务启动", "port", cfg.ListenPort, "base_context", cfg.BaseContext)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}
