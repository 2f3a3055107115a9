package protocol

// Frame 一帧完整的上/下行协议报文
// 布局（全部小端）：
// marker0 'B' | marker1 'R' | lenLE[2] | msgIdLE[2] | src[1] | dst[1] | payload[len] | sumLE[2]
type Frame struct {
	MsgID   uint16
	Src     uint8
	Dst     uint8
	Payload []byte
}

// 帧起始标记，与主机端客户端保持一致
const (
	Marker0 byte = 'B'
	Marker1 byte = 'R'
)

// MaxPayload 单帧最大负载字节数；超过即视为协议违例，整帧丢弃
const MaxPayload = 128

// 消息标识（上行请求 0x01xx，下行响应 0x80xx/0x81xx）
const (
	MsgGetTelemetry  uint16 = 0x0101
	MsgSetHome       uint16 = 0x0102
	MsgResetVelocity uint16 = 0x0103
	MsgAck           uint16 = 0x8000
	MsgNack          uint16 = 0x8001
	MsgTelemetry     uint16 = 0x8101
)

// 节点标识
const (
	DefaultHostID   uint8 = 0x00
	DefaultDeviceID uint8 = 0x01
	BroadcastID     uint8 = 0xFF
)

// NACK 错误码（单字节负载）
const (
	NackBadLength      byte = 1
	NackUnknownMessage byte = 2
	NackMalformed      byte = 3
)

// checksum16 累加校验（字节和取低16位），编解码两侧必须逐位一致
func checksum16(b []byte) uint16 {
	var sum uint32
	for i := 0; i < len(b); i++ {
		sum += uint32(b[i])
	}
	return uint16(sum & 0xFFFF)
}
