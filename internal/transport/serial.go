package transport

import (
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/imu-node/internal/config"
)

// SerialLink 串口链路：生产部署形态，主机经 USB-CDC/UART 访问节点
type SerialLink struct {
	port serial.Port
	pump *pump
	log  *zap.Logger

	mu     sync.Mutex
	closed bool

	onBytes func(n int)
}

// OpenSerial 打开串口并启动后台读取
func OpenSerial(cfg cfgpkg.SerialConfig, log *zap.Logger) (*SerialLink, error) {
	mode := &serial.Mode{BaudRate: cfg.Baud}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, err
	}
	// 短读超时让读取循环保持活性，同时避免忙等
	_ = port.SetReadTimeout(20 * time.Millisecond)

	l := &SerialLink{port: port, pump: newPump(), log: log}
	go l.readLoop()
	return l, nil
}

// SetOnBytes 设置收字节指标回调
func (l *SerialLink) SetOnBytes(f func(n int)) { l.onBytes = f }

func (l *SerialLink) readLoop() {
	buf := make([]byte, 512)
	for {
		n, err := l.port.Read(buf)
		if n > 0 {
			if l.onBytes != nil {
				l.onBytes(n)
			}
			l.pump.push(buf[:n])
		}
		if err != nil {
			// 读取循环退出即视为链路失活，健康检查据此报告
			l.mu.Lock()
			wasClosed := l.closed
			l.closed = true
			l.mu.Unlock()
			if !wasClosed && l.log != nil {
				l.log.Warn("serial read error", zap.Error(err))
			}
			return
		}
	}
}

// Closed 返回串口是否已失活（显式关闭或读取循环出错退出）
func (l *SerialLink) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Poll 非阻塞取走已到达字节
func (l *SerialLink) Poll() []byte { return l.pump.drain() }

// Write 同步写出一帧
func (l *SerialLink) Write(b []byte) error {
	_, err := l.port.Write(b)
	return err
}

// Close 关闭串口
func (l *SerialLink) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return l.port.Close()
}
