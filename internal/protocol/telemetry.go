package protocol

import (
	"encoding/binary"
	"errors"
	"math"
)

var ErrBadPayload = errors.New("bad payload")

// TelemetryPayload 遥测响应负载（42 字节，小端）：
// u32 micros | u8 rvStatus | u8 laStatus | f32 roll,pitch,yaw | f32 vx,vy,vz | f32 ax,ay,az
type TelemetryPayload struct {
	Micros     uint32
	RVStatus   uint8
	LAStatus   uint8
	Roll       float32
	Pitch      float32
	Yaw        float32
	VX, VY, VZ float32
	AX, AY, AZ float32
}

// TelemetryPayloadLen 遥测负载定长字节数
const TelemetryPayloadLen = 42

// HomePayloadLen SetHome 显式负载定长字节数（f32 roll,pitch,yaw）
const HomePayloadLen = 12

// Encode 序列化遥测负载
func (t *TelemetryPayload) Encode() []byte {
	buf := make([]byte, TelemetryPayloadLen)
	binary.LittleEndian.PutUint32(buf[0:4], t.Micros)
	buf[4] = t.RVStatus
	buf[5] = t.LAStatus
	for i, f := range []float32{t.Roll, t.Pitch, t.Yaw, t.VX, t.VY, t.VZ, t.AX, t.AY, t.AZ} {
		binary.LittleEndian.PutUint32(buf[6+4*i:10+4*i], math.Float32bits(f))
	}
	return buf
}

// DecodeTelemetryPayload 反序列化遥测负载（主机侧/测试用）
func DecodeTelemetryPayload(data []byte) (*TelemetryPayload, error) {
	if len(data) != TelemetryPayloadLen {
		return nil, ErrBadPayload
	}
	t := &TelemetryPayload{
		Micros:   binary.LittleEndian.Uint32(data[0:4]),
		RVStatus: data[4],
		LAStatus: data[5],
	}
	fs := make([]float32, 9)
	for i := range fs {
		fs[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[6+4*i : 10+4*i]))
	}
	t.Roll, t.Pitch, t.Yaw = fs[0], fs[1], fs[2]
	t.VX, t.VY, t.VZ = fs[3], fs[4], fs[5]
	t.AX, t.AY, t.AZ = fs[6], fs[7], fs[8]
	return t, nil
}

// EncodeHomePayload 序列化 SetHome 显式负载
func EncodeHomePayload(roll, pitch, yaw float32) []byte {
	buf := make([]byte, HomePayloadLen)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(roll))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(pitch))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(yaw))
	return buf
}

// DecodeHomePayload 反序列化 SetHome 显式负载
func DecodeHomePayload(data []byte) (roll, pitch, yaw float32, err error) {
	if len(data) != HomePayloadLen {
		return 0, 0, 0, ErrBadPayload
	}
	roll = math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	pitch = math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	yaw = math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	return roll, pitch, yaw, nil
}
