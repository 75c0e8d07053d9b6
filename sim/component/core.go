package component

import "fmt"

// Shape is how an object manages its lifetime.
type Shape uint8

const (
	// ShapeSolo objects own their reference count and cannot be aggregated.
	ShapeSolo Shape = iota
	// ShapeAggregated objects delegate lifetime and navigation to a controller.
	ShapeAggregated
	// ShapeDual objects act as solo without a controller and as aggregated with one.
	ShapeDual
)

func (s Shape) String() string {
	switch s {
	case ShapeSolo:
		return "solo"
	case ShapeAggregated:
		return "aggregated"
	case ShapeDual:
		return "dual"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

type lifetimeKind uint8

const (
	owned lifetimeKind = iota
	delegated
)

// lifetime is either Owned(refs) or Delegated(controller).
type lifetime struct {
	kind       lifetimeKind
	refs       int32
	controller Object
}

// Core is the identity core embedded by every concrete component object.
// It implements Object and dispatches each call according to the lifetime
// variant chosen at initialization. Exactly one of InitSolo, InitAggregated
// or InitDual must be called before the object is used.
//
//	type counter struct {
//		component.Core
//		n int
//	}
//
//	func newCounter() *counter {
//		c := &counter{}
//		c.InitSolo(c, nil, component.Expose[Counter](c))
//		c.AddRef()
//		return c
//	}
type Core struct {
	shape     Shape
	life      lifetime
	self      Object
	entries   table
	navigator *Navigator
	onDestroy func()
	destroyed bool
	ready     bool
}

// InitSolo initializes c as a solo object. self is the outward identity
// surface (normally the embedding struct). The count starts at zero.
func (c *Core) InitSolo(self Object, onDestroy func(), entries ...Entry) {
	c.init(ShapeSolo, self, onDestroy, entries)
	c.life = lifetime{kind: owned}
}

// InitAggregated initializes c as an aggregated-only part of controller.
// A nil controller is reported as ErrBadAggregation.
func (c *Core) InitAggregated(self Object, controller Object, onDestroy func(), entries ...Entry) error {
	if controller == nil {
		return fmt.Errorf("aggregated object without controller: %w", ErrBadAggregation)
	}
	c.init(ShapeAggregated, self, onDestroy, entries)
	c.life = lifetime{kind: delegated, controller: controller}
	c.navigator = &Navigator{core: c}
	return nil
}

// InitDual initializes c as a dual-mode object: owned when controller is
// nil, delegated otherwise. The navigator exists in both modes.
func (c *Core) InitDual(self Object, controller Object, onDestroy func(), entries ...Entry) {
	c.init(ShapeDual, self, onDestroy, entries)
	if controller == nil {
		c.life = lifetime{kind: owned}
	} else {
		c.life = lifetime{kind: delegated, controller: controller}
	}
	c.navigator = &Navigator{core: c}
}

func (c *Core) init(shape Shape, self Object, onDestroy func(), entries []Entry) {
	if c.ready {
		panic("component.Core: initialized twice")
	}
	if self == nil {
		panic("component.Core: nil identity surface")
	}
	for _, e := range entries {
		if e.iid == IIDObject {
			panic("component.Core: the identity interface is implicit and cannot be listed")
		}
	}
	c.shape = shape
	c.self = self
	c.entries = table(entries)
	c.onDestroy = onDestroy
	c.ready = true
}

// Shape reports how the object was initialized.
func (c *Core) Shape() Shape {
	return c.shape
}

// Aggregated reports whether lifetime is delegated to a controller.
func (c *Core) Aggregated() bool {
	return c.life.kind == delegated
}

// Navigator returns the navigator of an aggregable object, or nil for a
// solo object. Only the controller should hold it.
func (c *Core) Navigator() *Navigator {
	return c.navigator
}

// AddRef implements Object.
func (c *Core) AddRef() int32 {
	c.mustBeAlive("AddRef")
	if c.life.kind == delegated {
		return c.life.controller.AddRef()
	}
	c.life.refs++
	return c.life.refs
}

// Release implements Object.
func (c *Core) Release() int32 {
	c.mustBeAlive("Release")
	if c.life.kind == delegated {
		return c.life.controller.Release()
	}
	if c.life.refs <= 0 {
		panic(fmt.Sprintf("component: Release on %T with reference count %d", c.self, c.life.refs))
	}
	c.life.refs--
	if c.life.refs == 0 {
		c.destroy()
		return 0
	}
	return c.life.refs
}

// QueryInterface implements Object.
func (c *Core) QueryInterface(iid IID) any {
	c.mustBeAlive("QueryInterface")
	if c.life.kind == delegated {
		return c.life.controller.QueryInterface(iid)
	}
	if iid == IIDObject {
		c.AddRef()
		return c.self
	}
	return c.lookup(iid)
}

// lookup resolves iid against the object's own table.
func (c *Core) lookup(iid IID) any {
	p, counted := c.entries.lookup(iid)
	if p == nil {
		return nil
	}
	if !counted {
		c.AddRef()
	}
	return p
}

func (c *Core) destroy() {
	if c.destroyed {
		panic(fmt.Sprintf("component: %T destroyed twice", c.self))
	}
	c.destroyed = true
	if c.onDestroy != nil {
		c.onDestroy()
	}
	c.entries = nil
	c.life.controller = nil
}

func (c *Core) mustBeAlive(op string) {
	if !c.ready {
		panic(fmt.Sprintf("component: %s on uninitialized object", op))
	}
	if c.destroyed {
		panic(fmt.Sprintf("component: %s on destroyed %T", op, c.self))
	}
}

// Navigator lets a controller query the interfaces implemented by one of
// its aggregated parts. Its reference count is fixed at one and its
// lifetime is the aggregate's lifetime.
type Navigator struct {
	core *Core
}

// AddRef is a no-op that reports a constant count of one.
func (n *Navigator) AddRef() int32 { return 1 }

// Release is a no-op that reports a constant count of one.
func (n *Navigator) Release() int32 { return 1 }

// QueryInterface resolves iid against the part's own interface table.
// The identity IID yields the navigator itself.
func (n *Navigator) QueryInterface(iid IID) any {
	n.core.mustBeAlive("QueryInterface")
	if iid == IIDObject {
		return n
	}
	return n.core.lookup(iid)
}

// Destroy tears the part down. The controller calls it exactly once, from
// its own destruction. Calling it on an owned dual-mode object is a
// contract violation.
func (n *Navigator) Destroy() {
	if n.core.life.kind != delegated {
		panic(fmt.Sprintf("component: Navigator.Destroy on non-aggregated %T", n.core.self))
	}
	n.core.destroy()
}
