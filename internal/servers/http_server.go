// Package servers HTTP服务器的组装和生命周期
package servers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"koi_fox_mini/internal/config"
	"koi_fox_mini/internal/handlers"
	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/middleware"
	"koi_fox_mini/internal/routes"
)

// HTTPServer HTTP服务器
type HTTPServer struct {
	server *http.Server
	engine *gin.Engine
	log    *logger.Logger
}

// NewHTTPServer 创建HTTP服务器，注册中间件和路由
func NewHTTPServer(cfg *config.Config, service handlers.Analyzer, log *logger.Logger) *HTTPServer {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Log.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	middleware.Setup(engine, cfg, log)
	routes.RegisterRoutes(engine,
		handlers.NewAnalyzeHandler(service, log),
		handlers.NewWSHandler(service, log),
	)

	return &HTTPServer{
		server: &http.Server{
			Addr:    cfg.Server.Addr(),
			Handler: engine,
		},
		engine: engine,
		log:    log,
	}
}

// Handler 返回路由，测试中直接用httptest调用
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Addr 监听地址
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *HTTPServer) Start() error {
	s.log.Info("正在启动HTTP服务器", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("HTTP服务器错误", "error", err.Error())
		return err
	}
	return nil
}

// Stop 优雅停止服务器，等待进行中的请求完成或ctx到期
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("正在停止HTTP服务器")
	return s.server.Shutdown(ctx)
}
