package component

import "fmt"

// Object is the identity interface exposed by every component object.
//
// AddRef and Release maintain the reference count that owns the object (or
// the aggregate it belongs to). The object is destroyed synchronously when
// Release drops the count to zero. QueryInterface returns the requested
// interface with one extra reference, or nil when it is not supported.
type Object interface {
	AddRef() int32
	Release() int32
	QueryInterface(iid IID) any
}

// IIDObject identifies the identity interface itself.
var IIDObject = DefineIID[Object]("edu.uestc.nsfx.IObject")

// Entry is one row of an object's interface table.
type Entry struct {
	iid IID
	get func() any
	// counted reports that get already returns a referenced pointer.
	counted bool
}

// Expose publishes v under the IID bound to the interface type T.
func Expose[T any](v T) Entry {
	return Entry{iid: IIDOf[T](), get: func() any { return v }}
}

// ExposeAs publishes v under an explicit IID. It is used when several
// interfaces share one Go type but need distinct identities.
func ExposeAs(iid IID, v any) Entry {
	return Entry{iid: iid, get: func() any { return v }}
}

// ExposeAggregated publishes the interface iid implemented by an aggregated
// part, looked up through the part's navigator.
func ExposeAggregated(iid IID, navigator Object) Entry {
	if navigator == nil {
		panic(fmt.Sprintf("component.ExposeAggregated: nil navigator for %s", NameOf(iid)))
	}
	return Entry{
		iid:     iid,
		get:     func() any { return navigator.QueryInterface(iid) },
		counted: true,
	}
}

// table is scanned linearly; entry order only affects probe cost.
type table []Entry

func (t table) lookup(iid IID) (any, bool) {
	for _, e := range t {
		if e.iid == iid {
			return e.get(), e.counted
		}
	}
	return nil, false
}

// Query returns the interface T implemented by o (directly or through an
// aggregated part). The result carries one reference.
func Query[T any](o Object) (T, error) {
	return QueryIID[T](o, IIDOf[T]())
}

// QueryIID is Query with an explicit IID.
func QueryIID[T any](o Object, iid IID) (T, error) {
	var zero T
	if o == nil {
		return zero, fmt.Errorf("query %s: %w", NameOf(iid), ErrInvalidPointer)
	}
	p := o.QueryInterface(iid)
	if p == nil {
		return zero, fmt.Errorf("query %s: %w", NameOf(iid), ErrNoInterface)
	}
	v, ok := p.(T)
	if !ok {
		o.Release()
		panic(fmt.Sprintf("component.QueryIID: %s resolved to %T", NameOf(iid), p))
	}
	return v, nil
}

// SameObject reports whether a and b are interfaces on the same object,
// by comparing their identity surfaces.
func SameObject(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ia := a.QueryInterface(IIDObject)
	ib := b.QueryInterface(IIDObject)
	same := ia == ib
	if ia != nil {
		ia.(Object).Release()
	}
	if ib != nil {
		ib.(Object).Release()
	}
	return same
}

// RefCount reads the current count of a live, referenced object.
func RefCount(o Object) int32 {
	if o == nil {
		return 0
	}
	o.AddRef()
	return o.Release()
}
