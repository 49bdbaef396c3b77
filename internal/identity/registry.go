package identity

import "fmt"

// Registry holds the configured identity backends and allows lookup
// by name. It performs no auth logic itself.
type Registry struct {
	backends map[string]Service
}

// NewRegistry registers backends under the given names.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Service)}
}

func (r *Registry) Register(name string, svc Service) {
	r.backends[name] = svc
}

// Get returns the backend by name or an error if not registered.
func (r *Registry) Get(name string) (Service, error) {
	svc, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown identity backend: %s", name)
	}
	return svc, nil
}
