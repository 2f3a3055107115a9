package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/taoyao-code/imu-node/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/imu-node/internal/config"
	"github.com/taoyao-code/imu-node/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "config file path (default: IMU_CONFIG or configs/example.yaml)")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger := logging.InitLogger(cfg.Logging)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 启动
	if err := bootstrap.Run(cfg, logger); err != nil {
		logger.Fatal("node exited with error", zap.Error(err))
	}
}
