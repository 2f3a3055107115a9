package sensor

import (
	"math"
	"time"
)

// 模拟姿态轨迹参数：三轴不同频率/相位的正弦摆动
const (
	simRollAmpDeg  = 35.0
	simPitchAmpDeg = 25.0
	simYawAmpDeg   = 40.0

	simRollFreqHz  = 0.23
	simPitchFreqHz = 0.31
	simYawFreqHz   = 0.17

	simPitchPhase = math.Pi / 3.0
	simYawPhase   = 2.0 * math.Pi / 3.0

	// 加速度脉冲串：周期性地在 X 轴上给一段方波推力
	simBurstPeriodS = 4.0
	simBurstLenS    = 0.6
	simBurstAccel   = 0.9 // m/s²，高于默认死区
)

// Sim 无硬件时的模拟采样方：按配置速率产出平滑四元数轨迹与
// 突发式线加速度。Poll 依据自身时钟判断是否到期，从不阻塞。
type Sim struct {
	interval time.Duration
	start    time.Time

	lastRot   time.Time
	lastAccel time.Time
}

// NewSim 创建模拟采样方；rateHz<=0 时取 50Hz
func NewSim(rateHz int) *Sim {
	if rateHz <= 0 {
		rateHz = 50
	}
	now := time.Now()
	return &Sim{
		interval:  time.Second / time.Duration(rateHz),
		start:     now,
		lastRot:   now,
		lastAccel: now,
	}
}

// PollRotation 到达采样周期时产出下一帧姿态四元数
func (s *Sim) PollRotation() (RotationSample, bool) {
	now := time.Now()
	if now.Sub(s.lastRot) < s.interval {
		return RotationSample{}, false
	}
	s.lastRot = now

	t := now.Sub(s.start).Seconds()
	const d2r = math.Pi / 180.0
	roll := simRollAmpDeg * d2r * math.Sin(2*math.Pi*simRollFreqHz*t)
	pitch := simPitchAmpDeg * d2r * math.Sin(2*math.Pi*simPitchFreqHz*t+simPitchPhase)
	yaw := simYawAmpDeg * d2r * math.Sin(2*math.Pi*simYawFreqHz*t+simYawPhase)

	w, i, j, k := quatFromEuler(roll, pitch, yaw)
	return RotationSample{W: w, I: i, J: j, K: k, Status: 3}, true
}

// PollAccel 到达采样周期时产出下一帧线加速度
func (s *Sim) PollAccel() (AccelSample, bool) {
	now := time.Now()
	if now.Sub(s.lastAccel) < s.interval {
		return AccelSample{}, false
	}
	s.lastAccel = now

	t := now.Sub(s.start).Seconds()
	var ax float64
	if math.Mod(t, simBurstPeriodS) < simBurstLenS {
		ax = simBurstAccel
	}
	return AccelSample{
		AX:     ax,
		Status: 3,
		Micros: uint64(now.Sub(s.start).Microseconds()),
	}, true
}

// quatFromEuler ZYX 内旋欧拉角（弧度）合成单位四元数
func quatFromEuler(roll, pitch, yaw float64) (w, i, j, k float64) {
	cr, sr := math.Cos(roll*0.5), math.Sin(roll*0.5)
	cp, sp := math.Cos(pitch*0.5), math.Sin(pitch*0.5)
	cy, sy := math.Cos(yaw*0.5), math.Sin(yaw*0.5)

	w = cr*cp*cy + sr*sp*sy
	i = sr*cp*cy - cr*sp*sy
	j = cr*sp*cy + sr*cp*sy
	k = cr*cp*sy - sr*sp*cy

	n := math.Sqrt(w*w + i*i + j*j + k*k)
	if n == 0 {
		return 1, 0, 0, 0
	}
	return w / n, i / n, j / n, k / n
}
