package imu

import "math"

// IntegratorConfig 漏积分器参数
type IntegratorConfig struct {
	DeadBand float64 // 加速度死区阈值 m/s²，低于视为噪声
	Damping  float64 // 指数衰减系数 1/s
	MaxDt    float64 // dt 健全上限（秒），超过按暂停处理不积分
	SnapEps  float64 // 衰减到该幅值以下直接清零 m/s
}

// DefaultIntegratorConfig 与原固件一致的默认调参；
// 主机侧消费方按这组 dead-band/decay 行为调校过，不可随意改动。
func DefaultIntegratorConfig() IntegratorConfig {
	return IntegratorConfig{
		DeadBand: 0.08,
		Damping:  1.5,
		MaxDt:    0.5,
		SnapEps:  1e-4,
	}
}

// Integrator 线加速度到机体系速度的一阶漏积分估计器。
// 每轴两种隐式状态：|a| 超过死区时积分 v += a·dt，否则指数衰减 v *= exp(-damping·dt)。
// 简单估计器，漂移是预期行为，不做卡尔曼滤波。
type Integrator struct {
	cfg IntegratorConfig

	vx, vy, vz float64
	lastMicros uint64
	primed     bool // 是否已建立时间基线
}

// NewIntegrator 创建积分器；零值参数回退到默认调参
func NewIntegrator(cfg IntegratorConfig) *Integrator {
	def := DefaultIntegratorConfig()
	if cfg.DeadBand <= 0 {
		cfg.DeadBand = def.DeadBand
	}
	if cfg.Damping <= 0 {
		cfg.Damping = def.Damping
	}
	if cfg.MaxDt <= 0 {
		cfg.MaxDt = def.MaxDt
	}
	if cfg.SnapEps <= 0 {
		cfg.SnapEps = def.SnapEps
	}
	return &Integrator{cfg: cfg}
}

// Update 用一个带单调时间戳（µs）的加速度样本推进速度估计。
// 首个样本只建立时间基线；dt 超过 MaxDt 视为暂停/恢复事件，
// 样本被记录但不积分，同时刷新基线避免下一拍放大误差。
func (g *Integrator) Update(ax, ay, az float64, micros uint64) {
	if !g.primed {
		g.lastMicros = micros
		g.primed = true
		return
	}
	if micros <= g.lastMicros {
		g.lastMicros = micros
		return
	}
	dt := float64(micros-g.lastMicros) / 1e6
	g.lastMicros = micros
	if dt > g.cfg.MaxDt {
		return
	}
	g.vx = g.stepAxis(g.vx, ax, dt)
	g.vy = g.stepAxis(g.vy, ay, dt)
	g.vz = g.stepAxis(g.vz, az, dt)
}

func (g *Integrator) stepAxis(v, a, dt float64) float64 {
	if math.Abs(a) > g.cfg.DeadBand {
		return v + a*dt
	}
	v *= math.Exp(-g.cfg.Damping * dt)
	if math.Abs(v) < g.cfg.SnapEps {
		return 0
	}
	return v
}

// Velocity 返回当前速度估计 m/s
func (g *Integrator) Velocity() (vx, vy, vz float64) {
	return g.vx, g.vy, g.vz
}

// Reset 清零速度并把时间基线重置到 micros，
// 下一个样本不会看到人为放大的 dt。
func (g *Integrator) Reset(micros uint64) {
	g.vx, g.vy, g.vz = 0, 0, 0
	g.lastMicros = micros
	g.primed = true
}
