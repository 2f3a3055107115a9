package sensor

// RotationSample 上游融合输出的旋转矢量（单位四元数）事件
type RotationSample struct {
	W, I, J, K float64
	Status     uint8
}

// AccelSample 上游去重力线加速度事件，时间戳为单调 µs
type AccelSample struct {
	AX, AY, AZ float64
	Status     uint8
	Micros     uint64
}

// Producer 上游传感器采样方。按自身节奏产出事件；
// Poll 一律立即返回，无新样本返回 false——核心不得假设上游存活，
// 上游停摆时节点继续用陈旧遥测应答。
type Producer interface {
	PollRotation() (RotationSample, bool)
	PollAccel() (AccelSample, bool)
}
