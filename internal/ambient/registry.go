package ambient

import "sync"

// Registry maps names to namespaces.
type Registry struct {
	mu         sync.Mutex
	namespaces map[string]*Namespace
}

// Default is the process registry used by command line entry points.
var Default = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{namespaces: make(map[string]*Namespace)}
}

// CreateNamespace returns the namespace called name, creating it on first use.
func (r *Registry) CreateNamespace(name string) *Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.namespaces[name]; ok {
		return ns
	}
	ns := &Namespace{name: name}
	r.namespaces[name] = ns
	return ns
}

// GetNamespace returns the namespace called name, or nil.
func (r *Registry) GetNamespace(name string) *Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namespaces[name]
}
