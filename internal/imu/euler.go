package imu

import "math"

// EulerDeg 内旋 roll/pitch/yaw，单位度
type EulerDeg struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// HomeReference 可选的姿态零点基准
type HomeReference struct {
	Roll  float64
	Pitch float64
	Yaw   float64
	IsSet bool
}

// QuatToEuler 单位四元数分解为内旋 roll/pitch/yaw（度）。
// asin 入参钳到 [-1,1]：累积误差可能把它推出定义域，接近万向锁时
// 确定性地返回 ±90° 俯仰而不是 NaN。
func QuatToEuler(w, i, j, k float64) EulerDeg {
	roll := math.Atan2(2*(w*i+j*k), 1-2*(i*i+j*j))
	pitch := math.Asin(clamp(2*(w*j-k*i), -1, 1))
	yaw := math.Atan2(2*(w*k+i*j), 1-2*(j*j+k*k))
	const r2d = 180.0 / math.Pi
	return EulerDeg{Roll: roll * r2d, Pitch: pitch * r2d, Yaw: yaw * r2d}
}

// Wrap180 把角度折叠到 (-180, 180]
func Wrap180(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// ApplyHome 输出相对基准姿态的欧拉角；未设基准时原样返回
func ApplyHome(sample EulerDeg, home *HomeReference) EulerDeg {
	if home == nil || !home.IsSet {
		return sample
	}
	return EulerDeg{
		Roll:  Wrap180(sample.Roll - home.Roll),
		Pitch: Wrap180(sample.Pitch - home.Pitch),
		Yaw:   Wrap180(sample.Yaw - home.Yaw),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
