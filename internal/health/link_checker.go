package health

import (
	"context"
	"time"
)

// LinkChecker 传输链路检查器：探测函数由具体链路在装配时注入。
// 串口关闭属于不健康；TCP 调试链路暂无主机连接只算降级，
// 主循环本身仍在正常推进。
type LinkChecker struct {
	probe func() (Status, string)
}

// NewLinkChecker 创建链路检查器
func NewLinkChecker(probe func() (Status, string)) *LinkChecker {
	return &LinkChecker{probe: probe}
}

// Name 返回检查器名称
func (c *LinkChecker) Name() string { return "link" }

// Check 执行健康检查
func (c *LinkChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if c.probe == nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "no link probe configured",
			Latency: time.Since(start),
		}
	}
	status, msg := c.probe()
	return CheckResult{Status: status, Message: msg, Latency: time.Since(start)}
}
