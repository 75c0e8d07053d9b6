package component

import "fmt"

// Constructor builds one instance of a concrete class.
//
// Without a controller it returns the new object holding one reference.
// With a controller it returns the navigator of the new aggregated part,
// which the controller keeps for the lifetime of the aggregate.
type Constructor func(controller Object) (Object, error)

// Factory creates instances of a single class.
type Factory interface {
	Object
	// CreateObject creates an instance and returns the interface iid on it.
	CreateObject(iid IID, controller Object) (any, error)
}

// IIDFactory identifies the class factory interface.
var IIDFactory = DefineIID[Factory]("edu.uestc.nsfx.IClassFactory")

// ClassFactory is the Factory for classes described by a Constructor.
type ClassFactory struct {
	Core
	ctor Constructor
}

// NewClassFactory wraps ctor. The returned factory holds one reference.
func NewClassFactory(ctor Constructor) (*ClassFactory, error) {
	if ctor == nil {
		return nil, fmt.Errorf("class factory: nil constructor: %w", ErrInvalidPointer)
	}
	f := &ClassFactory{ctor: ctor}
	f.InitSolo(f, nil, Expose[Factory](f))
	f.AddRef()
	return f, nil
}

// CreateObject implements Factory.
//
// When controller is non-nil the only valid iid is IIDObject, since the
// part's interfaces are reached through its navigator; the navigator is
// returned. Otherwise the object is created, queried for iid, and the
// construction reference is dropped, so an unsupported iid destroys it.
func (f *ClassFactory) CreateObject(iid IID, controller Object) (any, error) {
	if controller != nil && iid != IIDObject {
		return nil, fmt.Errorf("create %s under a controller: %w", NameOf(iid), ErrBadAggregation)
	}
	o, err := f.ctor(controller)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("create %s: %w", NameOf(iid), ErrOutOfMemory)
	}
	if controller != nil {
		return o, nil
	}
	p := o.QueryInterface(iid)
	o.Release()
	if p == nil {
		return nil, fmt.Errorf("create %s: %w", NameOf(iid), ErrNoInterface)
	}
	return p, nil
}
