package protocol

import "encoding/binary"

// Build 构造一帧完整报文（与 Parser 对应）。
// 负载长度由调用方保证不超过 MaxPayload；合法输入下无失败路径。
func Build(msgID uint16, src, dst uint8, payload []byte) []byte {
	total := 2 + 2 + 2 + 1 + 1 + len(payload) + 2
	buf := make([]byte, 0, total)
	buf = append(buf, Marker0, Marker1)
	// payload length (little-endian)
	l := make([]byte, 2)
	binary.LittleEndian.PutUint16(l, uint16(len(payload)))
	buf = append(buf, l...)
	// msgID
	mid := make([]byte, 2)
	binary.LittleEndian.PutUint16(mid, msgID)
	buf = append(buf, mid...)
	buf = append(buf, src, dst)
	buf = append(buf, payload...)
	// checksum (low 16 bits sum of all previous bytes)
	sumLE := make([]byte, 2)
	binary.LittleEndian.PutUint16(sumLE, checksum16(buf))
	buf = append(buf, sumLE...)
	return buf
}

// BuildAck 构造 ACK 响应帧（无负载）
func BuildAck(src, dst uint8) []byte {
	return Build(MsgAck, src, dst, nil)
}

// BuildNack 构造 NACK 响应帧（单字节错误码负载）
func BuildNack(src, dst uint8, code byte) []byte {
	return Build(MsgNack, src, dst, []byte{code})
}
