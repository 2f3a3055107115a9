package imu

import "sync"

// OrientationSample 最新一次融合姿态，新样本到达即原地覆盖，不留历史
type OrientationSample struct {
	Roll   float64
	Pitch  float64
	Yaw    float64
	Status uint8
}

// LinearAccelSample 最新一次去重力机体系线加速度
type LinearAccelSample struct {
	AX, AY, AZ float64
	Status     uint8
	Micros     uint64 // 单调时间戳 µs
}

// Snapshot 构建一条遥测响应所需字段的一致性快照（单临界区读出）
type Snapshot struct {
	Micros     uint32
	RVStatus   uint8
	LAStatus   uint8
	Roll       float64 // 相对基准，已折叠到 (-180,180]
	Pitch      float64
	Yaw        float64
	VX, VY, VZ float64
	AX, AY, AZ float64
}

// TelemetryState 进程级遥测共享状态。
// 两个写入方：上游采样通路（姿态/加速度/速度）与报文分发器（基准姿态、速度清零）。
// 显式注入而非包级全局，便于无真实传感器时做确定性测试。
type TelemetryState struct {
	mu     sync.RWMutex
	now    func() uint64 // 单调 µs 时钟
	orient OrientationSample
	accel  LinearAccelSample
	home   HomeReference
	integ  *Integrator
}

// NewTelemetryState 创建共享遥测状态；now 为单调微秒时钟
func NewTelemetryState(cfg IntegratorConfig, now func() uint64) *TelemetryState {
	return &TelemetryState{now: now, integ: NewIntegrator(cfg)}
}

// UpdateRotation 旋转矢量样本到达：分解四元数并覆盖当前姿态
func (s *TelemetryState) UpdateRotation(w, i, j, k float64, status uint8) {
	e := QuatToEuler(w, i, j, k)
	s.mu.Lock()
	s.orient = OrientationSample{Roll: e.Roll, Pitch: e.Pitch, Yaw: e.Yaw, Status: status}
	s.mu.Unlock()
}

// UpdateAccel 线加速度样本到达：覆盖样本并推进速度积分（同一临界区内完成）
func (s *TelemetryState) UpdateAccel(ax, ay, az float64, status uint8, micros uint64) {
	s.mu.Lock()
	s.accel = LinearAccelSample{AX: ax, AY: ay, AZ: az, Status: status, Micros: micros}
	s.integ.Update(ax, ay, az, micros)
	s.mu.Unlock()
}

// SetHomeCurrent 把当前姿态捕获为新的零点基准
func (s *TelemetryState) SetHomeCurrent() {
	s.mu.Lock()
	s.home = HomeReference{Roll: s.orient.Roll, Pitch: s.orient.Pitch, Yaw: s.orient.Yaw, IsSet: true}
	s.mu.Unlock()
}

// SetHomeExplicit 用显式给定的 roll/pitch/yaw（度）设置零点基准
func (s *TelemetryState) SetHomeExplicit(roll, pitch, yaw float64) {
	s.mu.Lock()
	s.home = HomeReference{Roll: roll, Pitch: pitch, Yaw: yaw, IsSet: true}
	s.mu.Unlock()
}

// Home 返回当前基准（测试与调试读数用）
func (s *TelemetryState) Home() HomeReference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.home
}

// ResetVelocity 清零速度估计并把积分时间基线重置为当前时刻
func (s *TelemetryState) ResetVelocity() {
	s.mu.Lock()
	s.integ.Reset(s.now())
	s.mu.Unlock()
}

// Snapshot 在单个临界区内读出全部响应字段，避免混入半更新数据。
// 时间戳取最近一次加速度样本的时刻；尚无样本时取当前时钟。
func (s *TelemetryState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel := ApplyHome(EulerDeg{Roll: s.orient.Roll, Pitch: s.orient.Pitch, Yaw: s.orient.Yaw}, &s.home)
	micros := s.accel.Micros
	if micros == 0 {
		micros = s.now()
	}
	vx, vy, vz := s.integ.Velocity()
	return Snapshot{
		Micros:   uint32(micros), // u32 回绕约 71 分钟，与原固件一致
		RVStatus: s.orient.Status,
		LAStatus: s.accel.Status,
		Roll:     rel.Roll,
		Pitch:    rel.Pitch,
		Yaw:      rel.Yaw,
		VX:       vx, VY: vy, VZ: vz,
		AX: s.accel.AX, AY: s.accel.AY, AZ: s.accel.AZ,
	}
}
