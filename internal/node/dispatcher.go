package node

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taoyao-code/imu-node/internal/imu"
	"github.com/taoyao-code/imu-node/internal/metrics"
	"github.com/taoyao-code/imu-node/internal/protocol"
	"github.com/taoyao-code/imu-node/internal/transport"
)

// Dispatcher 报文分发器：校验寻址与负载长度，读写共享遥测状态，
// 经 Codec 回写 ACK/NACK/遥测响应。响应一律以本节点地址为源、
// 请求方声明的源地址为目的。
type Dispatcher struct {
	deviceID uint8
	state    *imu.TelemetryState
	link     transport.Link
	log      *zap.Logger
	appm     *metrics.AppMetrics
}

// NewDispatcher 创建分发器
func NewDispatcher(deviceID uint8, state *imu.TelemetryState, link transport.Link, log *zap.Logger, appm *metrics.AppMetrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{deviceID: deviceID, state: state, link: link, log: log, appm: appm}
}

// HandleEvent 处理解析器产出的一个事件。
// 校验失败帧向其声明的源地址回 NACK(Malformed)；
// 目的地址不是本节点也不是广播的帧静默忽略，不产生任何响应。
func (d *Dispatcher) HandleEvent(ev protocol.Event) {
	if ev.Err != nil {
		d.nack(ev.Src, protocol.NackMalformed, "malformed")
		return
	}
	f := ev.Frame
	if f == nil {
		return
	}
	if f.Dst != d.deviceID && f.Dst != protocol.BroadcastID {
		return
	}

	if d.appm != nil {
		d.appm.DispatchTotal.WithLabelValues(fmt.Sprintf("%04X", f.MsgID)).Inc()
	}

	switch f.MsgID {
	case protocol.MsgGetTelemetry:
		d.handleGetTelemetry(f)
	case protocol.MsgSetHome:
		d.handleSetHome(f)
	case protocol.MsgResetVelocity:
		d.handleResetVelocity(f)
	default:
		d.nack(f.Src, protocol.NackUnknownMessage, "unknown_message")
	}
}

func (d *Dispatcher) handleGetTelemetry(f *protocol.Frame) {
	if len(f.Payload) != 0 {
		d.nack(f.Src, protocol.NackBadLength, "bad_length")
		return
	}
	s := d.state.Snapshot()
	p := protocol.TelemetryPayload{
		Micros:   s.Micros,
		RVStatus: s.RVStatus,
		LAStatus: s.LAStatus,
		Roll:     float32(s.Roll),
		Pitch:    float32(s.Pitch),
		Yaw:      float32(s.Yaw),
		VX:       float32(s.VX), VY: float32(s.VY), VZ: float32(s.VZ),
		AX: float32(s.AX), AY: float32(s.AY), AZ: float32(s.AZ),
	}
	d.send(protocol.Build(protocol.MsgTelemetry, d.deviceID, f.Src, p.Encode()))
}

func (d *Dispatcher) handleSetHome(f *protocol.Frame) {
	switch len(f.Payload) {
	case 0:
		// 零长负载：捕获当前姿态为新基准
		d.state.SetHomeCurrent()
	case protocol.HomePayloadLen:
		// 长度已校验，定长解码不会失败
		roll, pitch, yaw, _ := protocol.DecodeHomePayload(f.Payload)
		d.state.SetHomeExplicit(float64(roll), float64(pitch), float64(yaw))
	default:
		d.nack(f.Src, protocol.NackBadLength, "bad_length")
		return
	}
	d.send(protocol.BuildAck(d.deviceID, f.Src))
}

func (d *Dispatcher) handleResetVelocity(f *protocol.Frame) {
	if len(f.Payload) != 0 {
		d.nack(f.Src, protocol.NackBadLength, "bad_length")
		return
	}
	d.state.ResetVelocity()
	d.send(protocol.BuildAck(d.deviceID, f.Src))
}

func (d *Dispatcher) nack(dst uint8, code byte, reason string) {
	if d.appm != nil {
		d.appm.NackTotal.WithLabelValues(reason).Inc()
	}
	d.log.Debug("nack", zap.String("reason", reason), zap.Uint8("dst", dst))
	d.send(protocol.BuildNack(d.deviceID, dst, code))
}

func (d *Dispatcher) send(b []byte) {
	if err := d.link.Write(b); err != nil {
		if d.appm != nil {
			d.appm.ResponseErrors.Inc()
		}
		d.log.Warn("response write failed", zap.Error(err))
	}
}
