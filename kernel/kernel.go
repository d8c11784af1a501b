package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 16
)

type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability grants access to an IPC endpoint.
//
// It is opaque by construction (no exported fields) and may be transferred via IPC.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool { return c.rights != 0 }

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// MaxMessageBytes is the maximum payload size for IPC messages.
const MaxMessageBytes = 256

// Message is a fixed-size IPC envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// Payload returns the valid part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidFromCap
	SendErrInvalidToCap
	SendErrFromNoSendRight
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
	SendErrShutdown
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidFromCap:
		return "invalid from capability"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrFromNoSendRight:
		return "from capability has no send right"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	case SendErrShutdown:
		return "kernel shut down"
	default:
		return "unknown"
	}
}

// Task is a long-running unit of execution. Run returns when the task is done
// or when ctx.Done() is closed.
type Task interface {
	Run(ctx *Context)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx *Context)

func (f TaskFunc) Run(ctx *Context) { f(ctx) }

// ErrTaskPanicked is returned by Wait when a task panicked.
var ErrTaskPanicked = errors.New("kernel: task panicked")

type endpointState struct {
	ch chan Message
}

// Kernel routes IPC between tasks and owns their lifetime.
type Kernel struct {
	mu            sync.Mutex
	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint
	taskCount     TaskID

	tick   uint64
	tickCh chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group
}

// New creates a kernel instance.
func New() *Kernel {
	return NewWithContext(context.Background())
}

// NewWithContext creates a kernel whose tasks stop when parent is cancelled.
func NewWithContext(parent context.Context) *Kernel {
	ctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(ctx)
	return &Kernel{
		tickCh: make(chan struct{}),
		ctx:    gctx,
		cancel: cancel,
		g:      g,
	}
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.endpointCount >= maxEndpoints {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	k.endpoints[ep].ch = make(chan Message, mailboxSlots)
	return Capability{ep: ep, rights: rights}
}

// AddTask starts t on its own goroutine and returns its ID.
//
// A panicking task is recovered, reported to the panic handler, and cancels
// every other task.
func (k *Kernel) AddTask(t Task) TaskID {
	k.mu.Lock()
	if k.taskCount >= maxTasks {
		k.mu.Unlock()
		return 0
	}
	k.taskCount++
	id := k.taskCount
	k.mu.Unlock()

	ctx := &Context{k: k, taskID: id}
	k.g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				triggerPanic(PanicInfo{TaskID: id, Value: r})
				err = fmt.Errorf("%w: task %d: %v", ErrTaskPanicked, id, r)
			}
		}()
		t.Run(ctx)
		return nil
	})
	return id
}

// Done is closed when the kernel shuts down or a task panics.
func (k *Kernel) Done() <-chan struct{} { return k.ctx.Done() }

// Shutdown cancels every task and waits for them to return.
func (k *Kernel) Shutdown() error {
	k.cancel()
	return k.Wait()
}

// Wait blocks until every task has returned.
func (k *Kernel) Wait() error {
	return k.g.Wait()
}

// TickTo advances the kernel tick to seq and wakes tasks waiting on it.
// Ticks never go backwards.
func (k *Kernel) TickTo(seq uint64) {
	k.mu.Lock()
	if seq <= k.tick {
		k.mu.Unlock()
		return
	}
	k.tick = seq
	ch := k.tickCh
	k.tickCh = make(chan struct{})
	k.mu.Unlock()
	close(ch)
}

func (k *Kernel) nowTick() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

func (k *Kernel) waitTick(after uint64) uint64 {
	for {
		k.mu.Lock()
		now := k.tick
		ch := k.tickCh
		k.mu.Unlock()
		if now > after {
			return now
		}
		select {
		case <-ch:
		case <-k.ctx.Done():
			return now
		}
	}
}

func (k *Kernel) endpoint(ep Endpoint) chan Message {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ep >= k.endpointCount {
		return nil
	}
	return k.endpoints[ep].ch
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}
	ch := k.endpoint(to)
	if ch == nil {
		return SendErrNoEndpoint
	}
	if k.ctx.Err() != nil {
		return SendErrShutdown
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	select {
	case ch <- msg:
		return SendOK
	default:
		return SendErrQueueFull
	}
}
