package provider

import (
	schedservice "syncme/modules/scheduling/service"
)

// Registry holds the configured providers. It is built once at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	providers map[string]schedservice.CalendarProvider
	order     []string
}

func NewRegistry(providers ...schedservice.CalendarProvider) *Registry {
	r := &Registry{providers: make(map[string]schedservice.CalendarProvider)}
	for _, p := range providers {
		if _, exists := r.providers[p.Name()]; exists {
			continue
		}
		r.providers[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	return r
}

func (r *Registry) Get(name string) (schedservice.CalendarProvider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) All() []schedservice.CalendarProvider {
	out := make([]schedservice.CalendarProvider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}
