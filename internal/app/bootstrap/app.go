package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/imu-node/internal/config"
	"github.com/taoyao-code/imu-node/internal/health"
	"github.com/taoyao-code/imu-node/internal/httpserver"
	"github.com/taoyao-code/imu-node/internal/imu"
	"github.com/taoyao-code/imu-node/internal/metrics"
	"github.com/taoyao-code/imu-node/internal/node"
	"github.com/taoyao-code/imu-node/internal/sensor"
	"github.com/taoyao-code/imu-node/internal/transport"
)

// Run 统一启动流程：基础组件 → 遥测状态 → 传输链路 → HTTP → 主循环 → 信号退出
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting imu node", zap.String("node_id", NodeID()), zap.String("env", cfg.App.Env))

	// ========== 阶段1: 指标与健康聚合 ==========
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)
	agg := health.NewAggregator(0)

	// ========== 阶段2: 共享遥测状态 ==========
	start := time.Now()
	clock := func() uint64 { return uint64(time.Since(start).Microseconds()) }
	state := imu.NewTelemetryState(imu.IntegratorConfig{
		DeadBand: cfg.IMU.DeadBand,
		Damping:  cfg.IMU.Damping,
		MaxDt:    cfg.IMU.MaxDt,
	}, clock)

	// ========== 阶段3: 传输链路 ==========
	link, linkProbe, err := openLink(cfg, log, appm)
	if err != nil {
		log.Error("transport init failed", zap.Error(err))
		return err
	}
	defer link.Close()
	agg.Register(health.NewLinkChecker(linkProbe))
	log.Info("transport ready", zap.String("mode", cfg.Transport.Mode))

	// ========== 阶段4: 上游采样方 ==========
	var producer sensor.Producer
	if cfg.Sim.Enable {
		producer = sensor.NewSim(cfg.Sim.RateHz)
		log.Info("simulated sensor producer enabled", zap.Int("rate_hz", cfg.Sim.RateHz))
	} else {
		// 真实传感器驱动是外部协作方；未接入时节点依然上电服务，
		// 只是一直应答默认/陈旧遥测。
		log.Warn("no sensor producer configured, serving stale telemetry")
	}

	// ========== 阶段5: 分发器与主循环 ==========
	disp := node.NewDispatcher(cfg.Node.DeviceID, state, link, log, appm)
	loop := node.NewLoop(link, disp, producer, state, appm, log, cfg.Loop.Interval)
	agg.Register(health.NewLoopChecker(loop.LastStep, 0))

	// ========== 阶段6: HTTP 服务（非阻塞）==========
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, agg, state)
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	return nil
}

func openLink(cfg *cfgpkg.Config, log *zap.Logger, appm *metrics.AppMetrics) (transport.Link, func() (health.Status, string), error) {
	switch cfg.Transport.Mode {
	case "serial":
		l, err := transport.OpenSerial(cfg.Transport.Serial, log)
		if err != nil {
			return nil, nil, err
		}
		l.SetOnBytes(func(n int) { appm.BytesReceived.Add(float64(n)) })
		// 串口失活后节点无法对外应答
		probe := func() (health.Status, string) {
			if l.Closed() {
				return health.StatusUnhealthy, "serial port closed"
			}
			return health.StatusHealthy, ""
		}
		return l, probe, nil
	case "tcp":
		l, err := transport.ListenTCP(cfg.Transport.TCP, log)
		if err != nil {
			return nil, nil, err
		}
		l.SetMetricsCallbacks(nil, func(n int) { appm.BytesReceived.Add(float64(n)) })
		// 调试链路允许主机随时断开，只降级不判死
		probe := func() (health.Status, string) {
			if !l.Connected() {
				return health.StatusDegraded, "no host connection"
			}
			return health.StatusHealthy, ""
		}
		return l, probe, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport mode %q", cfg.Transport.Mode)
	}
}
