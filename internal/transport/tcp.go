package transport

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	cfgpkg "github.com/taoyao-code/imu-node/internal/config"
)

// TCPLink 在 TCP 上承载同一字节协议的调试链路。
// 监听端口，接受主机连接；新连接到来即替换旧连接（单主机语义），
// 接受速率用令牌桶限流，超过直接拒绝。
type TCPLink struct {
	cfg     cfgpkg.TCPConfig
	ln      net.Listener
	pump    *pump
	log     *zap.Logger
	limiter *rate.Limiter

	mu   sync.Mutex
	conn net.Conn

	stopC chan struct{}
	wg    sync.WaitGroup

	onAccept func()
	onBytes  func(n int)
}

// ListenTCP 监听并启动接受循环
func ListenTCP(cfg cfgpkg.TCPConfig, log *zap.Logger) (*TCPLink, error) {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}
	ratePerSec := cfg.AcceptRate
	if ratePerSec <= 0 {
		ratePerSec = 10
	}
	burst := cfg.AcceptBurst
	if burst <= 0 {
		burst = ratePerSec * 2
	}
	l := &TCPLink{
		cfg:     cfg,
		ln:      ln,
		pump:    newPump(),
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		stopC:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.acceptLoop()
	return l, nil
}

// SetMetricsCallbacks 设置指标回调
func (l *TCPLink) SetMetricsCallbacks(onAccept func(), onBytes func(int)) {
	l.onAccept, l.onBytes = onAccept, onBytes
}

// Addr 返回实际监听地址（测试里取随机端口用）
func (l *TCPLink) Addr() net.Addr { return l.ln.Addr() }

func (l *TCPLink) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.stopC:
				return
			default:
			}
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if !l.limiter.Allow() {
			if l.log != nil {
				l.log.Warn("accept rate exceeded, rejecting", zap.String("remote", conn.RemoteAddr().String()))
			}
			_ = conn.Close()
			continue
		}
		if l.onAccept != nil {
			l.onAccept()
		}

		// 单主机语义：新连接替换旧连接
		l.mu.Lock()
		old := l.conn
		l.conn = conn
		l.mu.Unlock()
		if old != nil {
			_ = old.Close()
		}

		l.wg.Add(1)
		go l.readLoop(conn)
	}
}

func (l *TCPLink) readLoop(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()
	defer func() {
		// 连接死亡后清除引用，Connected/Write 不再看到陈旧连接
		l.mu.Lock()
		if l.conn == conn {
			l.conn = nil
		}
		l.mu.Unlock()
	}()
	buf := make([]byte, 4096)
	for {
		if l.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(l.cfg.ReadTimeout))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if l.onBytes != nil {
				l.onBytes(n)
			}
			l.pump.push(buf[:n])
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// 读超时只代表链路空闲，刷新 deadline 继续
				continue
			}
			if err != io.EOF && l.log != nil {
				l.log.Debug("tcp read closed", zap.Error(err))
			}
			return
		}
	}
}

// Connected 返回当前是否有主机连接（健康检查用）
func (l *TCPLink) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// Poll 非阻塞取走已到达字节
func (l *TCPLink) Poll() []byte { return l.pump.drain() }

// Write 写出一帧到当前主机连接；无连接时返回错误，由上层计入响应失败
func (l *TCPLink) Write(b []byte) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return errors.New("no active connection")
	}
	if l.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(l.cfg.WriteTimeout))
	}
	_, err := conn.Write(b)
	return err
}

// Close 关闭监听与活动连接，等待内部 goroutine 退出
func (l *TCPLink) Close() error {
	close(l.stopC)
	_ = l.ln.Close()
	l.mu.Lock()
	if l.conn != nil {
		_ = l.conn.Close()
	}
	l.mu.Unlock()
	l.wg.Wait()
	return nil
}
