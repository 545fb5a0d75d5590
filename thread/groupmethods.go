package thread

import "github.com/rhelmot/objectively/object"

// installGroupMethods wires the language-level surface for thread groups,
// threads, and cross-group transfer: a
// ThreadGroup constructor, a `spawn` method that starts a closure running
// in a specific group (as opposed to the SPAWN opcode's convenience default
// of the calling thread's own group), a universal `donate` method every
// object inherits from the root type, and an `inject` method for
// cooperative cancellation.
func installGroupMethods() {
	object.TypeThreadGroup.Constructor = groupConstructor
	object.TypeThreadGroup.SetMember("spawn", mustBuiltin("spawn", groupSpawn))
	object.TypeObject.SetMember("donate", mustBuiltin("donate", objectDonate))
	object.TypeThread.SetMember("inject", mustBuiltin("inject", threadInject))
}

// mustBuiltin mirrors package builtin's newBuiltin: RootGroup's startup
// allowance is sized to cover the handful of static methods every package's
// Install wires up, so a Reserve failure here means a startup configuration
// bug, not a runtime condition this package can recover from.
func mustBuiltin(name string, fn func(args *object.Tuple) (object.Object, error)) *object.BuiltinFunction {
	b, err := object.NewBuiltin(object.RootGroup, name, fn)
	if err != nil {
		panic(err)
	}
	return b
}

// groupConstructor backs `ThreadGroup(parent, mem_limit, yield_interval,
// name)`. parent may be object.NoneSingleton to mean RootGroup.
func groupConstructor(t *object.Type, args *object.Tuple) (object.Object, error) {
	if len(args.Data) != 4 {
		return nil, object.NewTypeErrorf("thread-group() takes exactly 4 arguments (%d given)", len(args.Data))
	}
	parent := object.RootGroup
	if p, ok := args.Data[0].(*object.Group); ok {
		parent = p
	} else if args.Data[0] != object.NoneSingleton {
		return nil, object.NewTypeErrorf("thread-group() parent must be a thread-group or None")
	}
	memLimit, ok := args.Data[1].(*object.Int)
	if !ok {
		return nil, object.NewTypeErrorf("thread-group() mem_limit must be an int")
	}
	yieldInterval, ok := args.Data[2].(*object.Int)
	if !ok {
		return nil, object.NewTypeErrorf("thread-group() yield_interval must be an int")
	}
	name, ok := args.Data[3].(*object.Bytes)
	if !ok {
		return nil, object.NewTypeErrorf("thread-group() name must be bytes")
	}
	return object.NewChildGroup(parent, uint64(memLimit.Value), uint64(yieldInterval.Value), string(name.Data))
}

// groupSpawn backs `group.spawn(closure, args_tuple)`: start closure(args)
// as a new thread running in group, rather than the caller's own group.
func groupSpawn(args *object.Tuple) (object.Object, error) {
	if len(args.Data) != 3 {
		return nil, object.NewTypeErrorf("spawn() takes exactly 2 arguments (%d given)", len(args.Data)-1)
	}
	group, ok := args.Data[0].(*object.Group)
	if !ok {
		return nil, object.NewTypeErrorf("spawn() must be called on a thread-group")
	}
	closure, ok := args.Data[1].(*object.Closure)
	if !ok {
		return nil, object.NewTypeErrorf("spawn() target must be a closure")
	}
	callArgs, ok := args.Data[2].(*object.Tuple)
	if !ok {
		return nil, object.NewTypeErrorf("spawn() arguments must be a tuple")
	}
	return spawnThread(group, closure, callArgs)
}

// objectDonate backs `obj.donate(dest_group)`, installed on TypeObject so
// every Kind inherits it through ordinary type-chain attribute resolution.
func objectDonate(args *object.Tuple) (object.Object, error) {
	if len(args.Data) != 2 {
		return nil, object.NewTypeErrorf("donate() takes exactly 1 argument (%d given)", len(args.Data)-1)
	}
	dest, ok := args.Data[1].(*object.Group)
	if !ok {
		return nil, object.NewTypeErrorf("donate() destination must be a thread-group")
	}
	if err := object.Donate(args.Data[0], dest); err != nil {
		return nil, err
	}
	return object.NoneSingleton, nil
}

// threadInject backs `thread_handle.inject(exception)` for cooperative
// cancellation: the target observes exception at its next inter-instruction
// probe, not mid-instruction.
func threadInject(args *object.Tuple) (object.Object, error) {
	if len(args.Data) != 2 {
		return nil, object.NewTypeErrorf("inject() takes exactly 1 argument (%d given)", len(args.Data)-1)
	}
	exc, ok := args.Data[1].(*object.Exception)
	if !ok {
		return nil, object.NewTypeErrorf("inject() argument must be an exception")
	}
	t, err := threadByHandle(args.Data[0])
	if err != nil {
		return nil, err
	}
	t.Inject(exc)
	return object.NoneSingleton, nil
}

// next implements the consumer side of the generator/thread-handle call
// protocol -- a generator is itself a thread: calling a thread
// handle resumes it and returns its next yielded value, raises
// StopIteration once it has returned, or re-raises its terminal exception.
func next(self object.Object, args *object.Tuple) (object.Object, error) {
	t, err := threadByHandle(self)
	if err != nil {
		return nil, err
	}
	return t.resume()
}

func (t *Thread) resume() (object.Object, error) {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	switch state {
	case Returned:
		return nil, object.NewStopIteration()
	case Excepted:
		return nil, t.err
	case Yielded:
		t.resumeCh <- struct{}{}
	}

	var rep report
	waitErr := WithReleasedGIL(func() error {
		rep = <-t.reportCh
		return nil
	})
	if waitErr != nil {
		return nil, waitErr
	}

	t.mu.Lock()
	switch rep.kind {
	case reportYielded:
		t.state = Yielded
	case reportReturned:
		t.state = Returned
		t.result = rep.value
	case reportExcepted:
		t.state = Excepted
		t.err = rep.err
	}
	t.mu.Unlock()
	if rep.kind == reportReturned || rep.kind == reportExcepted {
		object.RemoveRootProvider(t.id)
	}

	switch rep.kind {
	case reportYielded:
		return rep.value, nil
	case reportReturned:
		return nil, object.NewStopIteration()
	default:
		return nil, rep.err
	}
}
