package archive

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultQueueSize = 256

// Async 将写入放入有界队列，由单个协程顺序落盘
// Record 永不阻塞调用方：队列满时直接丢弃并计数
type Async struct {
	next    Recorder
	queue   chan Entry
	onError func(Entry, error)
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	dropped atomic.Int64
	written atomic.Int64
}

// AsyncConfig 异步记录器配置
type AsyncConfig struct {
	QueueSize int
	// 单条写入超时，默认 5s
	WriteTimeout time.Duration
	// 后端写入失败时回调（通常用于记录日志），可为空
	OnError func(Entry, error)
}

// NewAsync 包装一个后端并启动写协程
func NewAsync(next Recorder, cfg AsyncConfig) *Async {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a := &Async{
		next:    next,
		queue:   make(chan Entry, size),
		onError: cfg.OnError,
		timeout: timeout,
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for e := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.next.Record(ctx, e)
		cancel()
		if err != nil {
			if a.onError != nil {
				a.onError(e, err)
			}
			continue
		}
		a.written.Add(1)
	}
}

// Record 非阻塞入队
func (a *Async) Record(_ context.Context, e Entry) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

func (a *Async) History(ctx context.Context, roomID string, limit int) ([]Entry, error) {
	return a.next.History(ctx, roomID, limit)
}

// Close 停止接收，等待队列写完后关闭后端
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return a.next.Close()
}

func (a *Async) Dropped() int64 { return a.dropped.Load() }
func (a *Async) Written() int64 { return a.written.Load() }

var _ Recorder = (*Async)(nil)
