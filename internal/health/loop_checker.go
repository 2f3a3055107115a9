package health

import (
	"context"
	"fmt"
	"time"
)

// LoopChecker 主循环活性检查器：Step 长时间未推进视为节点停摆。
// 注意解析器停在半帧状态是可恢复的正常情况，不计入不健康。
type LoopChecker struct {
	lastStep func() time.Time
	stale    time.Duration
}

// NewLoopChecker 创建主循环检查器；stale<=0 时取 3s
func NewLoopChecker(lastStep func() time.Time, stale time.Duration) *LoopChecker {
	if stale <= 0 {
		stale = 3 * time.Second
	}
	return &LoopChecker{lastStep: lastStep, stale: stale}
}

// Name 返回检查器名称
func (c *LoopChecker) Name() string { return "loop" }

// Check 执行健康检查
func (c *LoopChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	last := c.lastStep()
	if last.IsZero() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "loop has not stepped yet",
			Latency: time.Since(start),
		}
	}
	age := time.Since(last)
	status := StatusHealthy
	msg := ""
	if age > c.stale {
		status = StatusUnhealthy
		msg = fmt.Sprintf("loop stalled for %s", age.Round(time.Millisecond))
	}
	return CheckResult{
		Status:  status,
		Message: msg,
		Details: map[string]any{
			"last_step_age_ms": age.Milliseconds(),
		},
		Latency: time.Since(start),
	}
}
