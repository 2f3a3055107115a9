package protocol

import (
	"bytes"
	"testing"
)

func feedAll(t *testing.T, p *Parser, raw []byte) []Event {
	t.Helper()
	return p.Feed(raw)
}

func TestFeed_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		msgID   uint16
		src     uint8
		dst     uint8
		payload []byte
	}{
		{"no payload", MsgGetTelemetry, 0x00, 0x01, nil},
		{"home payload", MsgSetHome, 0x00, 0x01, EncodeHomePayload(10, -5, 90)},
		{"max payload", 0x7777, 0x10, 0xFF, bytes.Repeat([]byte{0xAB}, MaxPayload)},
	}
	for _, tc := range cases {
		p := NewParser()
		raw := Build(tc.msgID, tc.src, tc.dst, tc.payload)
		evs := feedAll(t, p, raw)
		if len(evs) != 1 {
			t.Fatalf("%s: expected 1 event, got %d", tc.name, len(evs))
		}
		fr := evs[0].Frame
		if fr == nil {
			t.Fatalf("%s: expected frame, got error %v", tc.name, evs[0].Err)
		}
		if fr.MsgID != tc.msgID || fr.Src != tc.src || fr.Dst != tc.dst {
			t.Fatalf("%s: unexpected frame header: %+v", tc.name, fr)
		}
		if !bytes.Equal(fr.Payload, tc.payload) {
			t.Fatalf("%s: payload mismatch", tc.name)
		}
	}
}

func TestFeed_SplitAcrossFeeds(t *testing.T) {
	raw := Build(MsgSetHome, 0x00, 0x01, EncodeHomePayload(1, 2, 3))
	p := NewParser()
	var evs []Event
	// 逐字节喂入，模拟串口零散到达
	for _, b := range raw {
		evs = append(evs, p.Feed([]byte{b})...)
	}
	if len(evs) != 1 || evs[0].Frame == nil {
		t.Fatalf("expected 1 frame from byte-at-a-time feed, got %+v", evs)
	}
}

func TestFeed_ResyncAfterGarbage(t *testing.T) {
	garbage := []byte{0x00, 0xFF, 'B', 0x13, 'R', 'B', 0x42, 0x99}
	raw := Build(MsgGetTelemetry, 0x00, 0x01, nil)
	p := NewParser()
	evs := p.Feed(append(garbage, raw...))
	if len(evs) != 1 {
		t.Fatalf("expected exactly 1 event after garbage, got %d", len(evs))
	}
	if evs[0].Frame == nil || evs[0].Frame.MsgID != MsgGetTelemetry {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}

func TestFeed_ChecksumMismatch(t *testing.T) {
	raw := Build(MsgGetTelemetry, 0x07, 0x01, nil)
	raw[4] ^= 0x01 // 破坏 msgId 低字节
	p := NewParser()
	evs := p.Feed(raw)
	if len(evs) != 1 || evs[0].Err == nil {
		t.Fatalf("expected checksum error event, got %+v", evs)
	}
	if evs[0].Src != 0x07 {
		t.Fatalf("expected declared source 0x07, got %#x", evs[0].Src)
	}
	// 错误后必须已重同步
	evs = p.Feed(Build(MsgGetTelemetry, 0x00, 0x01, nil))
	if len(evs) != 1 || evs[0].Frame == nil {
		t.Fatalf("parser did not resync after checksum error")
	}
}

func TestFeed_BitFlipRejected(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	raw := Build(MsgSetHome, 0x00, 0x01, payload)
	// 对头部与负载区域的每一位做单比特翻转，均不得产出合法帧
	for i := 0; i < len(raw)-2; i++ {
		for bit := 0; bit < 8; bit++ {
			mut := make([]byte, len(raw))
			copy(mut, raw)
			mut[i] ^= 1 << bit
			p := NewParser()
			for _, ev := range p.Feed(mut) {
				if ev.Frame != nil {
					t.Fatalf("bit flip at byte %d bit %d yielded a valid frame", i, bit)
				}
			}
		}
	}
}

func TestFeed_OversizeDroppedSilently(t *testing.T) {
	// 声明长度 200 > MaxPayload：静默丢弃，无事件
	raw := []byte{Marker0, Marker1, 200, 0, 0x01, 0x01, 0x00, 0x01}
	p := NewParser()
	if evs := p.Feed(raw); len(evs) != 0 {
		t.Fatalf("oversize frame must not produce events, got %+v", evs)
	}
	if p.OversizeDrops() != 1 {
		t.Fatalf("expected 1 oversize drop, got %d", p.OversizeDrops())
	}
	// 之后的合法帧正常解析
	evs := p.Feed(Build(MsgGetTelemetry, 0x00, 0x01, nil))
	if len(evs) != 1 || evs[0].Frame == nil {
		t.Fatalf("parser did not recover after oversize drop")
	}
}

func TestFeed_NoPartialMarkerCarryOver(t *testing.T) {
	// 'B' 后若不是 'R' 直接回到找帧头，该字节不再作为新的 marker0 复用
	p := NewParser()
	if evs := p.Feed([]byte{'B', 'B'}); len(evs) != 0 {
		t.Fatalf("unexpected events: %+v", evs)
	}
	// 紧随其后的完整帧不受影响
	evs := p.Feed(Build(MsgGetTelemetry, 0x00, 0x01, nil))
	if len(evs) != 1 || evs[0].Frame == nil {
		t.Fatalf("expected valid frame after false start")
	}
}

func TestFeed_EmptyInput(t *testing.T) {
	p := NewParser()
	if evs := p.Feed(nil); evs != nil {
		t.Fatalf("empty feed must return nil, got %+v", evs)
	}
}
