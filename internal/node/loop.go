package node

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/imu-node/internal/imu"
	"github.com/taoyao-code/imu-node/internal/metrics"
	"github.com/taoyao-code/imu-node/internal/protocol"
	"github.com/taoyao-code/imu-node/internal/sensor"
	"github.com/taoyao-code/imu-node/internal/transport"
)

// Loop 协作式主循环：每一步先排干链路上已到达的字节并分发完整帧，
// 再轮询一次上游采样方。两步都不等待输入，无数据立即返回——
// 显式 Step 由外部驱动，实时循环与测试都能逐步推进。
type Loop struct {
	link     transport.Link
	parser   *protocol.Parser
	disp     *Dispatcher
	producer sensor.Producer
	state    *imu.TelemetryState
	appm     *metrics.AppMetrics
	log      *zap.Logger

	interval time.Duration
	lastStep atomic.Int64 // UnixNano，活性探测用

	seenOversize uint64
}

// NewLoop 组装主循环
func NewLoop(link transport.Link, disp *Dispatcher, producer sensor.Producer, state *imu.TelemetryState,
	appm *metrics.AppMetrics, log *zap.Logger, interval time.Duration,
) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 2 * time.Millisecond
	}
	return &Loop{
		link:     link,
		parser:   protocol.NewParser(),
		disp:     disp,
		producer: producer,
		state:    state,
		appm:     appm,
		log:      log,
		interval: interval,
	}
}

// Step 推进一步。独立可测：不阻塞、不睡眠，处理完当前可用输入即返回。
func (l *Loop) Step() {
	l.lastStep.Store(time.Now().UnixNano())

	if b := l.link.Poll(); len(b) > 0 {
		for _, ev := range l.parser.Feed(b) {
			if l.appm != nil {
				if ev.Err != nil {
					l.appm.FrameTotal.WithLabelValues("bad_checksum").Inc()
				} else {
					l.appm.FrameTotal.WithLabelValues("ok").Inc()
				}
			}
			l.disp.HandleEvent(ev)
		}
		if l.appm != nil {
			if n := l.parser.OversizeDrops(); n > l.seenOversize {
				l.appm.FrameOversize.Add(float64(n - l.seenOversize))
				l.seenOversize = n
			}
		}
	}

	if l.producer == nil {
		return
	}
	if rs, ok := l.producer.PollRotation(); ok {
		l.state.UpdateRotation(rs.W, rs.I, rs.J, rs.K, rs.Status)
		if l.appm != nil {
			l.appm.SampleTotal.WithLabelValues("rotation").Inc()
		}
	}
	if as, ok := l.producer.PollAccel(); ok {
		l.state.UpdateAccel(as.AX, as.AY, as.AZ, as.Status, as.Micros)
		if l.appm != nil {
			l.appm.SampleTotal.WithLabelValues("accel").Inc()
		}
	}
}

// Run 以固定节奏驱动 Step，直到 ctx 取消
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.log.Info("node loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.log.Info("node loop stopped")
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// LastStep 返回最近一次 Step 的时刻（活性检查用）
func (l *Loop) LastStep() time.Time {
	ns := l.lastStep.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
