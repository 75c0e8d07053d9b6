package component

import "errors"

// Error kinds reported by the component runtime and the packages built on it.
// Callers match kinds with errors.Is; messages carry context only.
var (
	// ErrNoInterface means the requested interface is not supported by the target object.
	ErrNoInterface = errors.New("no such interface")
	// ErrBadAggregation means a malformed aggregation request.
	ErrBadAggregation = errors.New("bad aggregation")
	// ErrUninitialized means an operation ran before its required setup.
	ErrUninitialized = errors.New("uninitialized")
	// ErrCannotReinitialize means setup-once state was changed after initialization.
	ErrCannotReinitialize = errors.New("cannot reinitialize")
	// ErrIllegalMethodCall means the call is not allowed in the object's current state.
	ErrIllegalMethodCall = errors.New("illegal method call")
	// ErrInvalidPointer means a required pointer argument was nil.
	ErrInvalidPointer = errors.New("invalid pointer")
	// ErrInvalidArgument means a value violates a documented precondition.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClassNotRegistered means no factory is registered under the class id.
	ErrClassNotRegistered = errors.New("class not registered")
	// ErrClassAlreadyRegistered means a factory is already registered under the class id.
	ErrClassAlreadyRegistered = errors.New("class already registered")
	// ErrOutOfMemory means object construction could not allocate the object.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrConnectionLimit means an event cannot accept more sinks.
	ErrConnectionLimit = errors.New("connection limit reached")
	// ErrNotConnected means the cookie does not identify a connected sink.
	ErrNotConnected = errors.New("not connected")
)
