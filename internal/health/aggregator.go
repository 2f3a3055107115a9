package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator 汇总多个检查器的结果并给出整体状态。
// 任一 unhealthy 即整体 unhealthy；否则有 degraded 即整体 degraded。
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
}

// NewAggregator 创建聚合器；timeout<=0 时取 2s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Aggregator{timeout: timeout}
}

// Register 注册一个检查器
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	a.checkers = append(a.checkers, c)
	a.mu.Unlock()
}

// Report 聚合报告
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Check 串行执行全部检查器并聚合
func (a *Aggregator) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	rep := Report{Status: StatusHealthy, Checks: make(map[string]CheckResult, len(checkers))}
	for _, c := range checkers {
		res := c.Check(ctx)
		rep.Checks[c.Name()] = res
		switch res.Status {
		case StatusUnhealthy:
			rep.Status = StatusUnhealthy
		case StatusDegraded:
			if rep.Status == StatusHealthy {
				rep.Status = StatusDegraded
			}
		}
	}
	return rep
}

// Ready 整体是否可服务（readyz 语义：unhealthy 以外均视为就绪）
func (a *Aggregator) Ready(ctx context.Context) bool {
	return a.Check(ctx).Status != StatusUnhealthy
}
