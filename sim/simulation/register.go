package simulation

import "github.com/nsfx-go/nsfx/sim/component"

// Register adds the scheduler and simulator classes to r.
func Register(r *component.Registry) error {
	classes := []struct {
		cid  string
		ctor component.Constructor
	}{
		{ListSchedulerClass, constructor(NewListScheduler)},
		{HeapSchedulerClass, constructor(NewHeapScheduler)},
		{SimulatorClass, constructor(NewSimulator)},
	}
	for _, c := range classes {
		if err := r.RegisterConstructor(c.cid, c.ctor); err != nil {
			return err
		}
	}
	return nil
}

type aggregable interface {
	component.Object
	Navigator() *component.Navigator
}

// constructor adapts a dual-mode New function to component.Constructor.
func constructor[T aggregable](newFn func(component.Object) T) component.Constructor {
	return func(controller component.Object) (component.Object, error) {
		o := newFn(controller)
		if controller != nil {
			return o.Navigator(), nil
		}
		return o, nil
	}
}

// SchedulerClass maps a scheduler kind ("list" or "heap") to its class id.
func SchedulerClass(kind string) (string, bool) {
	switch kind {
	case "list":
		return ListSchedulerClass, true
	case "heap":
		return HeapSchedulerClass, true
	}
	return "", false
}
