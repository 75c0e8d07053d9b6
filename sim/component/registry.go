package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry maps class ids to factories. It is an explicit value created
// by the host and passed to every creation site.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under cid. The registry keeps its own reference.
func (r *Registry) Register(cid string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("register %q: nil factory: %w", cid, ErrInvalidPointer)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[cid]; ok {
		return fmt.Errorf("register %q: %w", cid, ErrClassAlreadyRegistered)
	}
	factory.AddRef()
	r.factories[cid] = factory
	logrus.Debugf("registry: registered class %s", cid)
	return nil
}

// RegisterConstructor wraps ctor in a ClassFactory and registers it.
func (r *Registry) RegisterConstructor(cid string, ctor Constructor) error {
	f, err := NewClassFactory(ctor)
	if err != nil {
		return fmt.Errorf("register %q: %w", cid, err)
	}
	defer f.Release()
	return r.Register(cid, f)
}

// Unregister removes cid and drops the registry's reference to its factory.
func (r *Registry) Unregister(cid string) error {
	r.mu.Lock()
	f, ok := r.factories[cid]
	delete(r.factories, cid)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("unregister %q: %w", cid, ErrClassNotRegistered)
	}
	f.Release()
	logrus.Debugf("registry: unregistered class %s", cid)
	return nil
}

// UnregisterAll empties the registry.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	old := r.factories
	r.factories = make(map[string]Factory)
	r.mu.Unlock()
	for _, cid := range sortedKeys(old) {
		old[cid].Release()
	}
	if len(old) > 0 {
		logrus.Debugf("registry: unregistered %d classes", len(old))
	}
}

// Factory returns the factory registered under cid, with one reference
// owned by the caller.
func (r *Registry) Factory(cid string) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[cid]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("class %q: %w", cid, ErrClassNotRegistered)
	}
	f.AddRef()
	return f, nil
}

// Classes lists the registered class ids in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.factories)
}

// Create looks up cid and creates an instance exposing the interface T.
// With a non-nil controller, T must be Object and the navigator of the new
// part is returned.
func Create[T any](r *Registry, cid string, controller Object) (T, error) {
	var zero T
	f, err := r.Factory(cid)
	if err != nil {
		return zero, err
	}
	defer f.Release()

	iid := IIDOf[T]()
	p, err := f.CreateObject(iid, controller)
	if err != nil {
		return zero, fmt.Errorf("class %q: %w", cid, err)
	}
	v, ok := p.(T)
	if !ok {
		panic(fmt.Sprintf("component.Create: class %q returned %T for %s", cid, p, NameOf(iid)))
	}
	return v, nil
}

func sortedKeys(m map[string]Factory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
