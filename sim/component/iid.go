package component

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// IID is a 128-bit interface (or class) identifier.
type IID = uuid.UUID

// iidRegistry guarantees that no two names share an IID and that a Go
// interface type maps to exactly one IID.
type iidRegistry struct {
	mu     sync.RWMutex
	names  map[IID]string
	byType map[reflect.Type]IID
}

var iids = &iidRegistry{
	names:  make(map[IID]string),
	byType: make(map[reflect.Type]IID),
}

// NewIID derives the IID for a dotted name (e.g. "edu.uestc.nsfx.IClock").
// It panics if the name was already defined or collides with another name.
func NewIID(name string) IID {
	if name == "" {
		panic("component.NewIID: empty name")
	}
	iid := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))

	iids.mu.Lock()
	defer iids.mu.Unlock()
	if prev, ok := iids.names[iid]; ok {
		panic(fmt.Sprintf("component.NewIID: %q collides with %q (%s)", name, prev, iid))
	}
	iids.names[iid] = name
	return iid
}

// DefineIID derives the IID for name and binds it to the interface type T,
// so that IIDOf[T] and Query[T] can find it.
func DefineIID[T any](name string) IID {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("component.DefineIID: %v is not an interface type", t))
	}
	iid := NewIID(name)

	iids.mu.Lock()
	defer iids.mu.Unlock()
	if prev, ok := iids.byType[t]; ok {
		panic(fmt.Sprintf("component.DefineIID: %v already bound to %q", t, iids.names[prev]))
	}
	iids.byType[t] = iid
	return iid
}

// IIDOf returns the IID bound to the interface type T. It panics if T was
// never passed to DefineIID.
func IIDOf[T any]() IID {
	t := reflect.TypeFor[T]()
	iids.mu.RLock()
	iid, ok := iids.byType[t]
	iids.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("component.IIDOf: no IID defined for %v", t))
	}
	return iid
}

// NameOf returns the name an IID was derived from, or its string form when
// the IID is unknown.
func NameOf(iid IID) string {
	iids.mu.RLock()
	defer iids.mu.RUnlock()
	if name, ok := iids.names[iid]; ok {
		return name
	}
	return iid.String()
}
