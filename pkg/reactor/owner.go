package reactor

import (
	"fmt"
	"sync/atomic"
)

// Disposable is the single teardown contract every resource-owning type in
// the engine implements. Dispose must be idempotent.
type Disposable interface {
	Dispose()
}

// hierarchyNode is satisfied by anything carrying an Owner (computations
// embed one). ManageResource uses it to link children into the ownership
// tree and assign hierarchy paths.
type hierarchyNode interface {
	ownerNode() *Owner
}

// Owner is a node in the resource ownership tree. Every computation is an
// Owner; standalone owners can scope groups of resources. An owner holds
// its children (disposables, subscriptions, nested computations), a typed
// context map inherited by descendants, and a LIFO list of cleanup
// callbacks.
//
// Disposal is idempotent and cascades to all owned children exactly once.
type Owner struct {
	id   uint64
	name string

	// parent is a non-owning back-reference; ownership flows strictly
	// parent -> children.
	parent *Owner

	// path is the ordered sequence of sibling indices from the root.
	// Deeper paths sort before shallower ones in a scheduler pass.
	path []int

	// nextChild is the sibling index handed to the next linked child.
	nextChild int

	// children are owned disposables in registration order, disposed in
	// reverse registration order.
	children []Disposable

	// subscriptions are owned subscription handles, disposed before
	// children.
	subscriptions []*Subscription

	// values stores context values for this scope.
	values map[any]any

	// cleanups run in reverse registration order on disposal.
	cleanups []func()

	// disposed latches after the first Dispose.
	disposed atomic.Bool

	// sink receives disposal failures; inherited from the parent when the
	// node is linked. Nil means no sink.
	sink Sink
}

// NewOwner creates an owner. With a non-nil parent the new owner is linked
// as a managed child and inherits the parent's context scope; with a nil
// parent it is a detached root.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID()}
	if parent != nil {
		parent.ManageResource(o)
	}
	return o
}

// ID returns the owner's unique identity.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the owning parent, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// Path returns a copy of the owner's hierarchy path: the ordered sibling
// indices from the root.
func (o *Owner) Path() []int {
	out := make([]int, len(o.path))
	copy(out, o.path)
	return out
}

// IsDisposed reports whether the owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// ownerNode implements hierarchyNode.
func (o *Owner) ownerNode() *Owner { return o }

// ManageResource registers a resource under this owner. Subscription
// handles are disposed before other children. A resource that is itself a
// hierarchy node is linked as a child with an appended path segment. A
// resource registered on an already-disposed owner is disposed immediately.
func (o *Owner) ManageResource(d Disposable) {
	if d == nil {
		return
	}
	if o.disposed.Load() {
		d.Dispose()
		return
	}
	if sub, ok := d.(*Subscription); ok {
		o.subscriptions = append(o.subscriptions, sub)
		return
	}
	if node, ok := d.(hierarchyNode); ok {
		o.link(node.ownerNode())
	}
	o.children = append(o.children, d)
}

// link wires a child owner into the hierarchy, assigning its path.
func (o *Owner) link(child *Owner) {
	child.parent = o
	child.path = append(append(make([]int, 0, len(o.path)+1), o.path...), o.nextChild)
	o.nextChild++
	if child.sink == nil {
		child.sink = o.sink
	}
}

// SetContext stores a context value on this node, visible to this node and
// all descendants unless overridden. Prefer the typed Context[T] API.
func (o *Owner) SetContext(key, value any) {
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// GetContext looks a context value up on this node, walking up through
// parents until a value is found.
func (o *Owner) GetContext(key any) (any, bool) {
	for node := o; node != nil; node = node.parent {
		if node.values != nil {
			if v, ok := node.values[key]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// RegisterCleanup appends a teardown callback. Cleanups run in reverse
// registration order on disposal. Registering on an already-disposed owner
// runs the callback immediately.
func (o *Owner) RegisterCleanup(fn func()) {
	if fn == nil {
		return
	}
	if o.disposed.Load() {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// Dispose tears the owner down: cleanup callbacks first (reverse order,
// panics caught so the remaining callbacks still run), then owned
// subscriptions, then owned children (cascading their own Dispose), then
// all collections are cleared. Calling Dispose twice has the same
// observable effect as calling it once.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}
	o.teardown()
	o.values = nil
}

// reset runs the owner's teardown without marking it disposed. Computations
// use it between runs so resources acquired by the previous run are
// released before the body executes again. Context values survive a reset.
func (o *Owner) reset() {
	o.teardown()
	o.nextChild = 0
}

// teardown releases everything the owner holds, best-effort: a panicking
// cleanup or child dispose is reported to the sink and teardown continues.
func (o *Owner) teardown() {
	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		o.guard(cleanups[i])
	}

	subs := o.subscriptions
	o.subscriptions = nil
	for _, sub := range subs {
		sub.Dispose()
	}

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		o.guard(children[i].Dispose)
	}
}

// guard runs fn, reporting a panic to the sink instead of propagating it.
func (o *Owner) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil && o.sink != nil {
			o.sink.DisposalFailed(o.label(), r)
		}
	}()
	fn()
}

// label returns the owner's name for diagnostics.
func (o *Owner) label() string {
	if o.name != "" {
		return o.name
	}
	return fmt.Sprintf("owner-%d", o.id)
}

// pathBefore reports whether the node at path a should execute before the
// node at path b within one scheduler pass: nodes deeper in the hierarchy
// sort first, ties break lexicographically by sibling index. Children
// created during an ancestor's run are therefore not skipped, and teardown
// ordering favors inner before outer.
func pathBefore(a, b []int) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
