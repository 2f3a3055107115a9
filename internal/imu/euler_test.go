package imu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// quatZYX 按 yaw→pitch→roll 顺序合成单位四元数（度），测试辅助
func quatZYX(rollDeg, pitchDeg, yawDeg float64) (w, i, j, k float64) {
	const d2r = math.Pi / 180
	cr, sr := math.Cos(rollDeg*d2r/2), math.Sin(rollDeg*d2r/2)
	cp, sp := math.Cos(pitchDeg*d2r/2), math.Sin(pitchDeg*d2r/2)
	cy, sy := math.Cos(yawDeg*d2r/2), math.Sin(yawDeg*d2r/2)
	w = cr*cp*cy + sr*sp*sy
	i = sr*cp*cy - cr*sp*sy
	j = cr*sp*cy + sr*cp*sy
	k = cr*cp*sy - sr*sp*cy
	return
}

func TestQuatToEuler_Identity(t *testing.T) {
	e := QuatToEuler(1, 0, 0, 0)
	assert.InDelta(t, 0, e.Roll, 1e-9)
	assert.InDelta(t, 0, e.Pitch, 1e-9)
	assert.InDelta(t, 0, e.Yaw, 1e-9)
}

func TestQuatToEuler_SingleAxis(t *testing.T) {
	cases := []struct {
		name             string
		roll, pitch, yaw float64
	}{
		{"roll 10", 10, 0, 0},
		{"pitch -30", 0, -30, 0},
		{"yaw 90", 0, 0, 90},
		{"yaw -179", 0, 0, -179},
		{"combined", 10, 20, -45},
	}
	for _, tc := range cases {
		w, i, j, k := quatZYX(tc.roll, tc.pitch, tc.yaw)
		e := QuatToEuler(w, i, j, k)
		assert.InDelta(t, tc.roll, e.Roll, 1e-6, tc.name)
		assert.InDelta(t, tc.pitch, e.Pitch, 1e-6, tc.name)
		assert.InDelta(t, tc.yaw, e.Yaw, 1e-6, tc.name)
	}
}

func TestQuatToEuler_GimbalLockClamped(t *testing.T) {
	// 俯仰 ±90°：asin 入参在浮点误差下可能略超 [-1,1]，必须钳制而非 NaN
	s := math.Sqrt2 / 2
	up := QuatToEuler(s, 0, s*1.0000001, 0)
	assert.False(t, math.IsNaN(up.Pitch))
	assert.InDelta(t, 90, up.Pitch, 1e-4)

	down := QuatToEuler(s, 0, -s*1.0000001, 0)
	assert.False(t, math.IsNaN(down.Pitch))
	assert.InDelta(t, -90, down.Pitch, 1e-4)
}

func TestWrap180(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{360, 0},
		{-360, 0},
		{179.5, 179.5},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Wrap180(tc.in), 1e-9, "Wrap180(%v)", tc.in)
	}
}

func TestApplyHome(t *testing.T) {
	home := &HomeReference{Roll: 10, Pitch: -5, Yaw: -170, IsSet: true}

	// 姿态等于基准 → 全轴为零
	e := ApplyHome(EulerDeg{Roll: 10, Pitch: -5, Yaw: -170}, home)
	assert.InDelta(t, 0, e.Roll, 1e-9)
	assert.InDelta(t, 0, e.Pitch, 1e-9)
	assert.InDelta(t, 0, e.Yaw, 1e-9)

	// 偏航跨 ±180 边界：170 - (-170) = 340 → -20
	e = ApplyHome(EulerDeg{Yaw: 170}, &HomeReference{Yaw: -170, IsSet: true})
	assert.InDelta(t, -20, e.Yaw, 1e-9)
}

func TestApplyHome_Unset(t *testing.T) {
	in := EulerDeg{Roll: 33, Pitch: -12, Yaw: 270}
	// 未设置基准时原样返回，连折叠都不做
	assert.Equal(t, in, ApplyHome(in, &HomeReference{}))
	assert.Equal(t, in, ApplyHome(in, nil))
}
