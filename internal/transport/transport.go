package transport

// Link 字节传输链路抽象。底层保证有序、不丢字节（可能截断）。
// Poll 非阻塞地取走当前已到达的字节，无数据返回 nil——这是常态不是错误；
// 协作式主循环依赖该语义在字节之间交还控制权。
type Link interface {
	Poll() []byte
	Write(b []byte) error
	Close() error
}

// pump 各链路实现共用的入站缓冲：读取 goroutine 往里推块，
// Poll 一次性排干。队列满时丢弃最旧块，保证读取侧永不阻塞。
type pump struct {
	inC chan []byte
}

func newPump() *pump {
	return &pump{inC: make(chan []byte, 256)}
}

func (p *pump) push(b []byte) {
	dup := make([]byte, len(b))
	copy(dup, b)
	for {
		select {
		case p.inC <- dup:
			return
		default:
			// 背压：丢最旧的一块，解析器靠重同步恢复
			select {
			case <-p.inC:
			default:
			}
		}
	}
}

func (p *pump) drain() []byte {
	var out []byte
	for {
		select {
		case b := <-p.inC:
			out = append(out, b...)
		default:
			return out
		}
	}
}
