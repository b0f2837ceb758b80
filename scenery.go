// Package scenery is a collection of scene-building helpers for Tetra3D.
// Each helper takes a single options struct, builds the corresponding
// Tetra3D objects (backgrounds, primitive shapes, boxes, text, GLTF models),
// optionally registers a per-frame animation callback in a Registry owned by
// the host's render loop, and optionally parents the result to a
// caller-supplied Scene.
package scenery

import (
	"errors"
	"sync"

	"github.com/solarlune/tetra3d"
)

// ErrInvalidOptions is returned (wrapped) by every helper when the provided
// options are missing a required field or combine options that cannot be
// honored together. When it is returned, no scene mutation has taken place.
var ErrInvalidOptions = errors.New("scenery: invalid options")

// AnimationFunc is a per-frame callback associated with a visual element.
// It receives the element it was registered with and the time in seconds
// elapsed since registration.
type AnimationFunc func(node tetra3d.INode, elapsed float64)

type animationEntry struct {
	node    tetra3d.INode
	onFrame AnimationFunc
	elapsed float64
}

// Registry is an ordered collection of {element, per-frame callback} pairs,
// advanced once per frame by the host's render loop. Helpers append to it
// when called with an OnFrame callback; entries are never removed.
//
// The Registry also carries a queue of one-shot functions used by the
// asynchronous loaders to hand their results back to the render-loop
// goroutine: Update drains the queue before running the per-frame entries,
// so all scene-graph mutation happens on the goroutine that calls Update.
type Registry struct {
	entries []animationEntry

	queueMutex sync.Mutex
	queue      []func()
}

// NewRegistry creates a new, empty animation Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a per-frame callback for the given node. Nil nodes or
// callbacks are ignored.
func (registry *Registry) Add(node tetra3d.INode, onFrame AnimationFunc) {
	if node == nil || onFrame == nil {
		return
	}
	registry.entries = append(registry.entries, animationEntry{node: node, onFrame: onFrame})
}

// Count returns how many per-frame entries the Registry holds.
func (registry *Registry) Count() int {
	return len(registry.entries)
}

// Queue schedules fn to run on the next Update, before the per-frame
// entries. It is safe to call from any goroutine.
func (registry *Registry) Queue(fn func()) {
	if fn == nil {
		return
	}
	registry.queueMutex.Lock()
	registry.queue = append(registry.queue, fn)
	registry.queueMutex.Unlock()
}

// Update advances the Registry by dt seconds: it first drains the queued
// one-shot functions, then runs every per-frame entry in insertion order.
// Update should be called once per frame from the host's update loop.
func (registry *Registry) Update(dt float64) {

	registry.queueMutex.Lock()
	queued := registry.queue
	registry.queue = nil
	registry.queueMutex.Unlock()

	for _, fn := range queued {
		fn()
	}

	for i := range registry.entries {
		entry := &registry.entries[i]
		entry.elapsed += dt
		entry.onFrame(entry.node, entry.elapsed)
	}

}

// finishNode applies the shared tail of every helper: scale and position,
// animation registration, and scene attachment. A zero scale vector is
// treated as the identity scale so that hand-built options structs don't
// collapse their models.
func finishNode(node tetra3d.INode, scale, position tetra3d.Vector, onFrame AnimationFunc, registry *Registry, scene *tetra3d.Scene) {

	if scale.IsZero() {
		scale = tetra3d.NewVector(1, 1, 1)
	}
	node.SetLocalScaleVec(scale)
	node.SetLocalPositionVec(position)

	if onFrame != nil && registry != nil {
		registry.Add(node, onFrame)
	}

	if scene != nil {
		scene.Root.AddChildren(node)
	}

}
