// Package eventloop is a single-goroutine fd dispatcher. Every handler and every
// posted function runs on the goroutine that called Run, so state touched only from
// the loop needs no locking.
package eventloop

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

var ErrClosed = errors.New("event loop closed")

// Events passed to a Handler.
type Events uint32

const (
	Readable Events = 1 << iota
	Hangup
)

// Handler is called on the loop goroutine when its fd is ready.
type Handler func(fd int, ev Events)

// Source is a registered fd.
type Source struct {
	fd      int
	name    string
	handler Handler
}

func (s *Source) FD() int      { return s.fd }
func (s *Source) Name() string { return s.name }

type Loop struct {
	epfd   int
	wakeFD int

	mu        sync.Mutex
	sources   map[int]*Source
	queue     []func()
	running   bool
	closed    bool
	fdsClosed bool
}

func New() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	wakeFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFD)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFD, &ev); err != nil {
		unix.Close(wakeFD)
		unix.Close(epfd)
		return nil, fmt.Errorf("register wake fd: %w", err)
	}
	return &Loop{epfd: epfd, wakeFD: wakeFD, sources: make(map[int]*Source)}, nil
}

// AddFD watches fd for readability. Errors and hang-ups are reported once with
// Hangup, after which the source is removed.
func (l *Loop) AddFD(fd int, name string, handler Handler) (*Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if _, ok := l.sources[fd]; ok {
		return nil, fmt.Errorf("fd %d already registered", fd)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return nil, fmt.Errorf("register %s fd %d: %w", name, fd, err)
	}
	s := &Source{fd: fd, name: name, handler: handler}
	l.sources[fd] = s
	return s, nil
}

// RemoveSource stops watching a source. Removing an already-removed source is a no-op.
func (l *Loop) RemoveSource(s *Source) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeLocked(s)
}

func (l *Loop) removeLocked(s *Source) error {
	if cur, ok := l.sources[s.fd]; !ok || cur != s {
		return nil
	}
	delete(l.sources, s.fd)
	if l.closed {
		return nil
	}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, s.fd, nil); err != nil && !errors.Is(err, unix.EBADF) {
		return fmt.Errorf("unregister %s fd %d: %w", s.name, s.fd, err)
	}
	return nil
}

// Post queues fn to run on the loop goroutine. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	return l.wakeLocked()
}

// Invoke runs fn on the loop goroutine and waits for it to return. It must not be
// called from the loop goroutine itself.
func (l *Loop) Invoke(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wakeLocked interrupts epoll_wait. l.mu must be held so the eventfd cannot be
// closed underneath the write.
func (l *Loop) wakeLocked() error {
	if l.fdsClosed {
		return ErrClosed
	}
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	if _, err := unix.Write(l.wakeFD, one[:]); err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("wake event loop: %w", err)
	}
	return nil
}

// Run dispatches fd events and posted functions until ctx is cancelled or the
// loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.running {
		l.mu.Unlock()
		return errors.New("event loop already running")
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		if l.closed {
			_ = l.closeFDsLocked()
		}
		l.mu.Unlock()
	}()

	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		_ = l.wakeLocked()
		l.mu.Unlock()
	})
	defer stop()

	events := make([]unix.EpollEvent, 16)
	for {
		if ctx.Err() != nil {
			return nil
		}
		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil
		}

		n, err := unix.EpollWait(l.epfd, events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			l.dispatch(int(events[i].Fd), events[i].Events)
		}
	}
}

func (l *Loop) dispatch(fd int, mask uint32) {
	if fd == l.wakeFD {
		var buf [8]byte
		_, _ = unix.Read(l.wakeFD, buf[:])
		l.runQueue()
		return
	}

	l.mu.Lock()
	s, ok := l.sources[fd]
	l.mu.Unlock()
	if !ok {
		return
	}

	if mask&unix.EPOLLIN != 0 {
		s.handler(fd, Readable)
	}
	if mask&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		l.mu.Lock()
		registered := l.sources[fd] == s
		_ = l.removeLocked(s)
		l.mu.Unlock()
		if registered {
			log.Debug().Str("source", s.name).Int("fd", fd).Msg("event source hung up, removed")
			s.handler(fd, Hangup)
		}
	}
}

func (l *Loop) runQueue() {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

// Close stops the loop and releases the epoll and wake fds; if Run is active they
// are released when it returns. Queued functions that have not run are dropped.
func (l *Loop) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.sources = make(map[int]*Source)
	l.queue = nil

	if l.running {
		return l.wakeLocked()
	}
	return l.closeFDsLocked()
}

func (l *Loop) closeFDsLocked() error {
	if l.fdsClosed {
		return nil
	}
	l.fdsClosed = true
	return errors.Join(unix.Close(l.epfd), unix.Close(l.wakeFD))
}
