package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when a call is queued after Close.
var ErrClosed = errors.New("registry queue closed")

const opTimeout = 10 * time.Second

type opKind int

const (
	opRegister opKind = iota
	opDeregister
)

func (k opKind) String() string {
	if k == opRegister {
		return "register"
	}
	return "deregister"
}

type op struct {
	kind opKind
	name string
}

// Ordered queues register and deregister calls and applies them one at a time, in the order
// they were queued, on a single worker. Queueing never blocks, so rooms can call it while locked,
// and a torn-down room's deregistration cannot overtake the registration of its successor.
type Ordered struct {
	reg Registry
	log logrus.FieldLogger

	mu      sync.Mutex
	pending []op
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func NewOrdered(reg Registry, logger logrus.FieldLogger) *Ordered {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	o := &Ordered{
		reg:  reg,
		log:  logger,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go o.run()
	return o
}

// RegisterRoom queues a registration. ctx is not used; each call gets its own timeout when applied.
func (o *Ordered) RegisterRoom(_ context.Context, name string) error {
	return o.enqueue(op{kind: opRegister, name: name})
}

// DeregisterRoom queues a deregistration.
func (o *Ordered) DeregisterRoom(_ context.Context, name string) error {
	return o.enqueue(op{kind: opDeregister, name: name})
}

func (o *Ordered) enqueue(p op) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	o.pending = append(o.pending, p)
	o.mu.Unlock()
	o.signal()
	return nil
}

func (o *Ordered) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Ordered) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			closed := o.closed
			o.mu.Unlock()
			if closed {
				return
			}
			<-o.wake
			continue
		}
		next := o.pending[0]
		o.pending = o.pending[1:]
		o.mu.Unlock()

		o.apply(next)
	}
}

func (o *Ordered) apply(p op) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var err error
	if p.kind == opRegister {
		err = o.reg.RegisterRoom(ctx, p.name)
	} else {
		err = o.reg.DeregisterRoom(ctx, p.name)
	}
	entry := o.log.WithFields(logrus.Fields{"room": p.name, "op": p.kind.String()})
	if err != nil {
		entry.WithError(err).Error("room registry call failed")
		return
	}
	entry.Debug("room registry updated")
}

// Close stops accepting calls and waits until the queued ones have been applied or ctx ends.
// The wrapped registry stays open.
func (o *Ordered) Close(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.signal()

	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
