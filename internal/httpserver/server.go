package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	cfgpkg "github.com/taoyao-code/imu-node/internal/config"
	"github.com/taoyao-code/imu-node/internal/health"
	"github.com/taoyao-code/imu-node/internal/imu"
)

// Server HTTP 服务封装：健康检查、指标与只读遥测快照。
// 调试/监控面，不落任何遥测数据。
type Server struct {
	srv *http.Server
}

// New 创建并配置 Gin + HTTP Server
func New(cfg cfgpkg.HTTPConfig, metricsPath string, metricsHandler http.Handler,
	agg *health.Aggregator, state *imu.TelemetryState,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if agg == nil || agg.Ready(c.Request.Context()) {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	r.GET("/health", func(c *gin.Context) {
		if agg == nil {
			c.JSON(http.StatusOK, gin.H{"status": health.StatusHealthy})
			return
		}
		rep := agg.Check(c.Request.Context())
		code := http.StatusOK
		if rep.Status == health.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, rep)
	})

	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if metricsHandler != nil {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}

	// 只读遥测快照（与协议侧 GetTelemetry 同一数据源）
	if state != nil {
		r.GET("/api/v1/telemetry", func(c *gin.Context) {
			s := state.Snapshot()
			c.JSON(http.StatusOK, gin.H{
				"micros":             s.Micros,
				"orientation_status": s.RVStatus,
				"motion_status":      s.LAStatus,
				"roll":               s.Roll,
				"pitch":              s.Pitch,
				"yaw":                s.Yaw,
				"velocity":           gin.H{"x": s.VX, "y": s.VY, "z": s.VZ},
				"accel":              gin.H{"x": s.AX, "y": s.AY, "z": s.AZ},
			})
		})
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Server{srv: srv}
}

// Start 启动 HTTP 服务（阻塞）
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
