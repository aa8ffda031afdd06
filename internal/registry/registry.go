package registry

import (
	"sort"
	"sync"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/result"
)

// ElementHandler is the interface each flat-layout element class must implement.
type ElementHandler interface {
	Class() string
	// Validate checks the class-specific fields of el. It may fill in
	// defaults on el.Node, reporting each one as a warning.
	Validate(el *floorplan.Element) ([]result.Error, []result.Warning)
	// Decode adds the typed form of a valid el to l.
	Decode(el *floorplan.Element, l *floorplan.Layout)
}

// Default is the global handler registry.
var Default = New()

// Registry holds element class handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ElementHandler
}

// New returns a new empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]ElementHandler)}
}

// Register adds a handler for the given element class.
func (r *Registry) Register(class string, h ElementHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[class] = h
}

// Get returns the handler for the class, or nil and false.
func (r *Registry) Get(class string) (ElementHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[class]
	return h, ok
}

// ListSupportedClasses returns all registered classes, sorted.
func (r *Registry) ListSupportedClasses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]string, 0, len(r.handlers))
	for c := range r.handlers {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}
