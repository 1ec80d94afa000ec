package infrastructure

import (
	"context"
	"sync"

	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
)

type seatLock struct {
	sem  chan struct{}
	refs int
}

// LocalSeatLocker serializa, dentro do processo, as operações sobre o
// mesmo par ônibus/assento. Chaves sem ninguém esperando são descartadas.
type LocalSeatLocker struct {
	mu    sync.Mutex
	locks map[string]*seatLock
}

func NewLocalSeatLocker() *LocalSeatLocker {
	return &LocalSeatLocker{locks: make(map[string]*seatLock)}
}

func (l *LocalSeatLocker) Lock(ctx context.Context, busNumber, seatNumber string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := domain.SeatKey(busNumber, seatNumber)

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &seatLock{sem: make(chan struct{}, 1)}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.sem
			l.release(key, lock)
		})
	}, nil
}

func (l *LocalSeatLocker) release(key string, lock *seatLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

// held informa quantas chaves ainda têm dono ou alguém esperando.
func (l *LocalSeatLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
