package imu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(nowUs *uint64) *TelemetryState {
	return NewTelemetryState(DefaultIntegratorConfig(), func() uint64 { return *nowUs })
}

func TestTelemetryState_SnapshotDefaults(t *testing.T) {
	now := uint64(5_000_000)
	s := newTestState(&now)

	// 尚无任何样本：角度/速度全零，时间戳回退到注入时钟
	snap := s.Snapshot()
	assert.Equal(t, uint32(5_000_000), snap.Micros)
	assert.Zero(t, snap.Roll)
	assert.Zero(t, snap.VX)
	assert.Zero(t, snap.RVStatus)
}

func TestTelemetryState_RotationAndHome(t *testing.T) {
	now := uint64(0)
	s := newTestState(&now)

	w, i, j, k := quatZYX(10, 0, 0)
	s.UpdateRotation(w, i, j, k, 3)

	// 未设基准：原样输出
	snap := s.Snapshot()
	assert.InDelta(t, 10, snap.Roll, 1e-6)
	assert.Equal(t, uint8(3), snap.RVStatus)

	// 捕获当前姿态为基准后，同一姿态读数为零
	s.SetHomeCurrent()
	snap = s.Snapshot()
	assert.InDelta(t, 0, snap.Roll, 1e-6)
	assert.InDelta(t, 0, snap.Pitch, 1e-6)
	assert.InDelta(t, 0, snap.Yaw, 1e-6)

	// 姿态变到 15°，相对读数 5°
	w, i, j, k = quatZYX(15, 0, 0)
	s.UpdateRotation(w, i, j, k, 3)
	snap = s.Snapshot()
	assert.InDelta(t, 5, snap.Roll, 1e-6)
}

func TestTelemetryState_SetHomeExplicit(t *testing.T) {
	now := uint64(0)
	s := newTestState(&now)
	s.SetHomeExplicit(0, 0, -170)
	require.True(t, s.Home().IsSet)

	w, i, j, k := quatZYX(0, 0, 170)
	s.UpdateRotation(w, i, j, k, 3)

	// 170 - (-170) 跨界折叠为 -20
	snap := s.Snapshot()
	assert.InDelta(t, -20, snap.Yaw, 1e-6)
}

func TestTelemetryState_AccelAndVelocity(t *testing.T) {
	now := uint64(0)
	s := newTestState(&now)

	s.UpdateAccel(1.0, 0, 0, 3, 0)
	for n := 1; n <= 50; n++ {
		s.UpdateAccel(1.0, 0, 0, 3, uint64(n*stepUs))
	}
	snap := s.Snapshot()
	assert.InDelta(t, 0.5, snap.VX, 1e-9)
	assert.InDelta(t, 1.0, snap.AX, 1e-9)
	assert.Equal(t, uint8(3), snap.LAStatus)
	assert.Equal(t, uint32(50*stepUs), snap.Micros)
}

func TestTelemetryState_ResetVelocity(t *testing.T) {
	now := uint64(0)
	s := newTestState(&now)
	s.UpdateAccel(1.0, 0, 0, 3, 0)
	s.UpdateAccel(1.0, 0, 0, 3, stepUs)
	require.NotZero(t, s.Snapshot().VX)

	now = 2 * stepUs
	s.ResetVelocity()
	snap := s.Snapshot()
	assert.Zero(t, snap.VX)

	// 清零后以 Reset 时刻为基线继续积分
	s.UpdateAccel(1.0, 0, 0, 3, 3*stepUs)
	snap = s.Snapshot()
	assert.InDelta(t, 0.01, snap.VX, 1e-9)
}
