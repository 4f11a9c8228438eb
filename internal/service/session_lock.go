package service

import (
	"sync"
)

// sessionLocker 按会话串行化的锁管理器。
// 同一会话的命令排队执行，不同会话互不阻塞。
// 引用计数保证空闲会话的锁会被回收。
type sessionLocker struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocker() *sessionLocker {
	return &sessionLocker{
		locks: make(map[string]*sessionLock),
	}
}

// Acquire 获取会话锁，返回释放函数。释放函数只能调用一次。
func (l *sessionLocker) Acquire(sessionID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		l.locks[sessionID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.mu.Unlock()

			l.mu.Lock()
			lock.refs--
			if lock.refs == 0 {
				delete(l.locks, sessionID)
			}
			l.mu.Unlock()
		})
	}
}
