package health

import (
	"context"
	"time"
)

// Status 健康状态，三档
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 部分受损但仍可应答
	StatusUnhealthy Status = "unhealthy" // 无法对外服务
)

// CheckResult 单项检查结果
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// Checker 单项健康检查。节点内的检查器都是进程内状态探测，
// 不发起网络调用，Check 应当立即返回。
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}
