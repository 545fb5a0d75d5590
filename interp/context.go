package interp

import "github.com/rhelmot/objectively/object"

// Probe is the inter-instruction housekeeping contract (see the spec
// glossary entry "Probe"): maybe collect, maybe yield the lock, maybe
// surface an injected cancellation exception. Frame-local temp-root
// clearing is handled by the interpreter itself; everything else is the
// scheduler's job, reached through this interface so interp never imports
// package thread.
type Probe interface {
	Tick() error
}

// Context threads one thread's scheduling hooks through every recursive
// Run/execCall invocation (CALL, SPAWN, and nested closure calls), so interp
// never needs to import package thread to reach the scheduler.
type Context struct {
	Group *object.Group
	Probe Probe

	// Spawn starts a brand new thread running closure(args) and returns its
	// thread handle immediately, without waiting for it to run.
	Spawn func(group *object.Group, closure *object.Closure, args *object.Tuple) (object.Object, error)

	// Yield suspends the calling thread as a generator, handing value to
	// whichever other thread next calls `next` on it, and blocks until
	// that happens.
	Yield func(value object.Object) error

	frames []*Frame
}

// Roots returns every object directly reachable from this context's active
// frame stack, for the GC's root-provider hook.
func (ctx *Context) Roots() []object.Object {
	var result []object.Object
	for _, f := range ctx.frames {
		f.Trace(func(o object.Object) bool {
			result = append(result, o)
			return true
		})
	}
	return result
}

// fallbackCtx is the context used when a closure is invoked through the
// generic object.Call path (e.g. from inside a dict's __eq__/__hash__
// dispatch) rather than through an explicit bytecode CALL. There is at
// most one live value because the single GIL admits only one running
// thread at a time; package thread installs it around every resume and
// clears it before releasing the lock.
var fallbackCtx *Context

// SetFallbackContext installs or clears (pass nil) the ambient context used
// by object.Call when it reaches a closure outside of an explicit Context.
func SetFallbackContext(ctx *Context) {
	fallbackCtx = ctx
}

func init() {
	object.SetClosureInvoker(func(c *object.Closure, args *object.Tuple) (object.Object, error) {
		ctx := fallbackCtx
		if ctx == nil {
			return nil, object.NewRuntimeErrorf("no interpreter context available to invoke closure")
		}
		return Run(ctx, c, args)
	})
}
