package protocol

import "errors"

// ErrBadChecksum 校验和不匹配（帧结构完整但内容损坏）
var ErrBadChecksum = errors.New("bad checksum")

// Event 解析产出：要么是一帧校验通过的 Frame，要么是一条带源地址的成帧错误。
// 成帧错误只在校验和不匹配时上报（此时 src 已解析完毕），由上层转为 NACK；
// 其余错误（标记不匹配、长度超限）按协议约定静默重同步，不产生事件。
type Event struct {
	Frame *Frame
	Err   error
	Src   uint8
}

type parseState int

// 状态机每消费一个字节迁移一次；任意错误后回到 stateSeeking 重新找帧头
const (
	stateSeeking parseState = iota
	stateMarker1 // 已匹配 marker0，等待 marker1
	stateLenLo
	stateLenHi
	stateMsgLo
	stateMsgHi
	stateSrc
	stateDst
	statePayload
	stateCkLo
	stateCkHi
)

// Parser 逐字节流式解析器。
// 每条传输链路恰好持有一个实例；固定容量缓冲，稳态不增长。
// 消费完当前可用字节立即返回，半帧状态保留到下一次 Feed。
type Parser struct {
	state  parseState
	length uint16
	msgID  uint16
	src    uint8
	dst    uint8
	sum    uint16
	ck     uint16

	payload [MaxPayload]byte
	n       int

	oversize uint64
}

// NewParser 创建解析器（初始处于找帧头状态）
func NewParser() *Parser {
	return &Parser{}
}

// Feed 消费一段字节流，返回期间完成的全部事件。
// b 为空时直接返回 nil，无数据是常态而非错误。
func (p *Parser) Feed(b []byte) []Event {
	var evs []Event
	for _, c := range b {
		if ev, ok := p.step(c); ok {
			evs = append(evs, ev)
		}
	}
	return evs
}

// OversizeDrops 返回因声明长度超限而被静默丢弃的帧数
func (p *Parser) OversizeDrops() uint64 { return p.oversize }

// Reset 强制回到找帧头状态（链路重建等外部显式复位用）
func (p *Parser) Reset() {
	p.state = stateSeeking
	p.n = 0
}

// step 消费单个字节，完成一帧（或判定一帧损坏）时返回事件
func (p *Parser) step(c byte) (Event, bool) {
	switch p.state {
	case stateSeeking:
		if c == Marker0 {
			p.state = stateMarker1
		}

	case stateMarker1:
		if c == Marker1 {
			// 校验和覆盖两个起始标记在内的全部头部与负载字节
			p.sum = uint16(Marker0) + uint16(Marker1)
			p.state = stateLenLo
		} else {
			// 不做部分匹配回退，直接重新找帧头
			p.state = stateSeeking
		}

	case stateLenLo:
		p.length = uint16(c)
		p.sum += uint16(c)
		p.state = stateLenHi

	case stateLenHi:
		p.length |= uint16(c) << 8
		p.sum += uint16(c)
		p.state = stateMsgLo

	case stateMsgLo:
		p.msgID = uint16(c)
		p.sum += uint16(c)
		p.state = stateMsgHi

	case stateMsgHi:
		p.msgID |= uint16(c) << 8
		p.sum += uint16(c)
		p.state = stateSrc

	case stateSrc:
		p.src = c
		p.sum += uint16(c)
		p.state = stateDst

	case stateDst:
		p.dst = c
		p.sum += uint16(c)
		if p.length > MaxPayload {
			// 协议违例：声明长度超过容量，静默丢弃整帧重新同步
			p.oversize++
			p.state = stateSeeking
			return Event{}, false
		}
		p.n = 0
		if p.length == 0 {
			p.state = stateCkLo
		} else {
			p.state = statePayload
		}

	case statePayload:
		p.payload[p.n] = c
		p.n++
		p.sum += uint16(c)
		if p.n == int(p.length) {
			p.state = stateCkLo
		}

	case stateCkLo:
		p.ck = uint16(c)
		p.state = stateCkHi

	case stateCkHi:
		p.ck |= uint16(c) << 8
		p.state = stateSeeking
		if p.ck != p.sum {
			return Event{Err: ErrBadChecksum, Src: p.src}, true
		}
		data := make([]byte, p.n)
		copy(data, p.payload[:p.n])
		return Event{Frame: &Frame{MsgID: p.msgID, Src: p.src, Dst: p.dst, Payload: data}}, true
	}
	return Event{}, false
}
