package room

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type LifecycleState int

const (
	Active LifecycleState = iota
	AwaitingTimeout
	Terminated
)

func (s LifecycleState) String() string {
	switch s {
	case Active:
		return "active"
	case AwaitingTimeout:
		return "awaiting_timeout"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// deregisterTimeout bounds the one registry call made at shutdown.
const deregisterTimeout = 10 * time.Second

// Lifecycle tears an idle room down. Every check interval it looks at the player count; an empty
// room arms a single timeout, and the room is terminated only if it is still empty when that
// timeout fires. A player joining in between is noticed lazily at expiry.
type Lifecycle struct {
	name          string
	checkInterval time.Duration
	timeout       time.Duration
	count         func() int
	reg           RoomRegistry
	log           *logrus.Entry

	// OnTerminate runs once, after the room is marked terminated.
	OnTerminate func()

	// terminate atomically re-checks emptiness, runs then and terminates. Nil means the count
	// alone decides.
	terminate func(then func()) bool

	mu        sync.Mutex
	state     LifecycleState
	stopTimer func() bool
	afterFunc func(d time.Duration, f func()) func() bool
}

func NewLifecycle(name string, checkInterval, timeout time.Duration, count func() int, reg RoomRegistry, log *logrus.Entry) *Lifecycle {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Lifecycle{
		name:          name,
		checkInterval: checkInterval,
		timeout:       timeout,
		count:         count,
		reg:           reg,
		log:           log,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// SetAfterFunc swaps the timer factory. Tests use it to fire the timeout by hand.
func (l *Lifecycle) SetAfterFunc(f func(d time.Duration, fn func()) func() bool) {
	l.mu.Lock()
	l.afterFunc = f
	l.mu.Unlock()
}

// SetTerminator binds the lifecycle to the room it tears down. f must check for players and
// terminate in one step, running then only when it terminates.
func (l *Lifecycle) SetTerminator(f func(then func()) bool) {
	l.mu.Lock()
	l.terminate = f
	l.mu.Unlock()
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() LifecycleState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Check is one coarse idle check. It arms the timeout if the room is empty and none is armed.
func (l *Lifecycle) Check() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Active {
		return
	}
	if n := l.count(); n > 0 {
		return
	}
	l.state = AwaitingTimeout
	l.stopTimer = l.afterFunc(l.timeout, l.expire)
	l.log.Infof("room is empty, shutting down in %s unless someone joins", l.timeout)
}

// expire runs when the armed timeout fires.
func (l *Lifecycle) expire() {
	l.mu.Lock()
	if l.state != AwaitingTimeout {
		l.mu.Unlock()
		return
	}
	l.stopTimer = nil
	if l.count() > 0 || !l.tryTerminate() {
		l.state = Active
		l.mu.Unlock()
		l.log.Debug("idle timeout abandoned, room has players again")
		return
	}
	l.state = Terminated
	onTerminate := l.OnTerminate
	l.mu.Unlock()

	l.log.Info("room idle timeout reached, terminated")
	if onTerminate != nil {
		onTerminate()
	}
}

// tryTerminate deregisters the room as part of terminating it, so the deregistration is queued
// before any join can observe the room as terminated.
func (l *Lifecycle) tryTerminate() bool {
	if l.terminate == nil {
		l.deregister()
		return true
	}
	return l.terminate(l.deregister)
}

func (l *Lifecycle) deregister() {
	if l.reg == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), deregisterTimeout)
	defer cancel()
	if err := l.reg.DeregisterRoom(ctx, l.name); err != nil {
		l.log.WithError(err).Error("failed to deregister room")
		return
	}
	l.log.Info("room deregistered")
}

// Run drives Check every check interval until ctx is cancelled or the room terminates.
func (l *Lifecycle) Run(ctx context.Context) {
	interval := l.checkInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			if l.stopTimer != nil {
				l.stopTimer()
				l.stopTimer = nil
			}
			l.mu.Unlock()
			return
		case <-ticker.C:
			if l.State() == Terminated {
				return
			}
			l.Check()
		}
	}
}
