package event

import (
	"fmt"

	"github.com/nsfx-go/nsfx/sim/component"
)

// Cookie identifies one connection. Valid cookies are never zero.
type Cookie uint64

// Source is an event that sinks can be connected to.
type Source[A, R any] interface {
	component.Object
	// Connect adds sink and holds a reference to it until it is
	// disconnected or the event is destroyed.
	Connect(sink Sink[A, R]) (Cookie, error)
	// Disconnect removes the sink identified by cookie.
	Disconnect(cookie Cookie) error
}

type connection[A, R any] struct {
	cookie Cookie
	sink   Sink[A, R]
}

// Event is a dual-mode Source that fires its sinks in connection order.
// Several events with the same prototype are told apart by the IID they
// are exposed under, so an Event is published with ExposeAs.
type Event[A, R any] struct {
	component.Core
	limit int
	last  Cookie
	conns []connection[A, R]
}

// NewEvent creates an event exposed under iid. A positive limit caps the
// number of simultaneous connections. With a nil controller the event
// holds one reference; otherwise it is a part of controller and is
// reached through its navigator.
func NewEvent[A, R any](iid component.IID, controller component.Object, limit int) *Event[A, R] {
	e := &Event[A, R]{limit: limit}
	e.InitDual(e, controller, e.disconnectAll, component.ExposeAs(iid, e))
	if controller == nil {
		e.AddRef()
	}
	return e
}

// Connect implements Source.
func (e *Event[A, R]) Connect(sink Sink[A, R]) (Cookie, error) {
	if sink == nil {
		return 0, fmt.Errorf("connect: nil sink: %w", component.ErrInvalidPointer)
	}
	if e.limit > 0 && len(e.conns) >= e.limit {
		return 0, fmt.Errorf("connect: %d of %d connections in use: %w", len(e.conns), e.limit, component.ErrConnectionLimit)
	}
	e.last++
	sink.AddRef()
	e.conns = append(e.conns, connection[A, R]{cookie: e.last, sink: sink})
	return e.last, nil
}

// Disconnect implements Source.
func (e *Event[A, R]) Disconnect(cookie Cookie) error {
	for i, c := range e.conns {
		if c.cookie == cookie {
			e.conns = append(e.conns[:i:i], e.conns[i+1:]...)
			c.sink.Release()
			return nil
		}
	}
	return fmt.Errorf("disconnect cookie %d: %w", cookie, component.ErrNotConnected)
}

// NumConnections returns the number of connected sinks.
func (e *Event[A, R]) NumConnections() int {
	return len(e.conns)
}

// Visit calls fn for every sink connected when Visit starts. Sinks may
// connect or disconnect while being visited.
func (e *Event[A, R]) Visit(fn func(sink Sink[A, R])) {
	if len(e.conns) == 0 {
		return
	}
	snapshot := make([]Sink[A, R], len(e.conns))
	for i, c := range e.conns {
		c.sink.AddRef()
		snapshot[i] = c.sink
	}
	for _, s := range snapshot {
		fn(s)
		s.Release()
	}
}

// Fire fires every connected sink with arg.
func (e *Event[A, R]) Fire(arg A) {
	e.Visit(func(s Sink[A, R]) { s.Fire(arg) })
}

func (e *Event[A, R]) disconnectAll() {
	conns := e.conns
	e.conns = nil
	for _, c := range conns {
		c.sink.Release()
	}
}
