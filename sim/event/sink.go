// Package event provides callable sink objects and connectable events.
//
// A sink is a reference-counted object with a single Fire method. Sinks
// wrap ordinary Go callables (functors, funcs, method values) so that the
// scheduler and event sources can hold and release them like any other
// component object. Every instantiation of Sink used with component.Query
// needs its own IID, defined once with component.DefineIID.
package event

import (
	"fmt"

	"github.com/nsfx-go/nsfx/sim/component"
)

// Void is the argument and result type of sinks that take or return nothing.
type Void = struct{}

// Sink is a callable object.
type Sink[A, R any] interface {
	component.Object
	Fire(arg A) R
}

// EventSink is the zero-argument sink used by the scheduler and the
// simulation lifecycle events.
type EventSink = Sink[Void, Void]

// IIDEventSink identifies EventSink.
var IIDEventSink = component.DefineIID[EventSink]("edu.uestc.nsfx.IEventSink")

// Functor is any value with a Call method.
type Functor[A, R any] interface {
	Call(arg A) R
}

// Adapter is a dual-mode Sink that forwards Fire to a wrapped callable.
type Adapter[A, R any] struct {
	component.Core
	fire func(A) R
}

var _ EventSink = (*Adapter[Void, Void])(nil)

func newAdapter[A, R any](controller component.Object, fire func(A) R) *Adapter[A, R] {
	a := &Adapter[A, R]{fire: fire}
	a.InitDual(a, controller, nil, component.Expose[Sink[A, R]](a))
	if controller == nil {
		a.AddRef()
	}
	return a
}

// Fire calls the wrapped callable with arg and returns its result.
func (a *Adapter[A, R]) Fire(arg A) R {
	return a.fire(arg)
}

// FromFunctor wraps a copy of f. With a nil controller the adapter is solo
// and holds one reference; otherwise it is a part of controller.
func FromFunctor[A, R any, F Functor[A, R]](controller component.Object, f F) *Adapter[A, R] {
	return newAdapter(controller, f.Call)
}

// FromFunc wraps fn. A nil fn is rejected with ErrInvalidPointer.
func FromFunc[A, R any](controller component.Object, fn func(A) R) (*Adapter[A, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("event sink: nil function: %w", component.ErrInvalidPointer)
	}
	return newAdapter(controller, fn), nil
}

// FromMethod wraps a method expression bound to o, e.g.
// FromMethod(nil, node, (*Node).OnPacket). Both o and method must be non-nil.
func FromMethod[O, A, R any](controller component.Object, o *O, method func(*O, A) R) (*Adapter[A, R], error) {
	if o == nil {
		return nil, fmt.Errorf("event sink: nil object: %w", component.ErrInvalidPointer)
	}
	if method == nil {
		return nil, fmt.Errorf("event sink: nil method: %w", component.ErrInvalidPointer)
	}
	return newAdapter(controller, func(arg A) R { return method(o, arg) }), nil
}

// FromAction wraps a function with no arguments and no result as an
// EventSink.
func FromAction(controller component.Object, fn func()) (*Adapter[Void, Void], error) {
	if fn == nil {
		return nil, fmt.Errorf("event sink: nil action: %w", component.ErrInvalidPointer)
	}
	return newAdapter(controller, func(Void) Void {
		fn()
		return Void{}
	}), nil
}
