package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// NodeConfig 节点协议寻址配置
type NodeConfig struct {
	DeviceID uint8 `mapstructure:"deviceId"`
	HostID   uint8 `mapstructure:"hostId"`
}

// SerialConfig 串口链路配置
type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

// TCPConfig TCP 调试链路配置（在 TCP 上承载同一字节协议）
type TCPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	AcceptRate   int           `mapstructure:"acceptRate"`
	AcceptBurst  int           `mapstructure:"acceptBurst"`
}

// TransportConfig 传输层选择：serial 或 tcp
type TransportConfig struct {
	Mode   string       `mapstructure:"mode"`
	Serial SerialConfig `mapstructure:"serial"`
	TCP    TCPConfig    `mapstructure:"tcp"`
}

// IMUConfig 速度积分器调参
type IMUConfig struct {
	DeadBand float64 `mapstructure:"deadBand"`
	Damping  float64 `mapstructure:"damping"`
	MaxDt    float64 `mapstructure:"maxDt"`
}

// SimConfig 模拟采样方配置（无硬件运行）
type SimConfig struct {
	Enable bool `mapstructure:"enable"`
	RateHz int  `mapstructure:"rateHz"`
}

// LoopConfig 协作式主循环配置
type LoopConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config 顶层配置结构
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Node      NodeConfig      `mapstructure:"node"`
	Transport TransportConfig `mapstructure:"transport"`
	IMU       IMUConfig       `mapstructure:"imu"`
	Sim       SimConfig       `mapstructure:"sim"`
	Loop      LoopConfig      `mapstructure:"loop"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 IMU_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("IMU_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 IMU_，并将点号替换为下划线
	v.SetEnvPrefix("IMU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "imu-node")
	v.SetDefault("app.env", "dev")

	v.SetDefault("node.deviceId", 0x01)
	v.SetDefault("node.hostId", 0x00)

	v.SetDefault("transport.mode", "tcp")
	v.SetDefault("transport.serial.port", "/dev/ttyACM0")
	v.SetDefault("transport.serial.baud", 115200)
	v.SetDefault("transport.tcp.addr", ":7100")
	v.SetDefault("transport.tcp.readTimeout", "5s")
	v.SetDefault("transport.tcp.writeTimeout", "5s")
	v.SetDefault("transport.tcp.acceptRate", 10)
	v.SetDefault("transport.tcp.acceptBurst", 20)

	v.SetDefault("imu.deadBand", 0.08)
	v.SetDefault("imu.damping", 1.5)
	v.SetDefault("imu.maxDt", 0.5)

	v.SetDefault("sim.enable", true)
	v.SetDefault("sim.rateHz", 50)

	v.SetDefault("loop.interval", "2ms")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/imu-node.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}
