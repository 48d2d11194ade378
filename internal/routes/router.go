package routes

import (
	"errors"
	"fmt"
)

// ErrNoFactory is returned when a matched route has no registered view.
var ErrNoFactory = errors.New("no view registered for route")

// Factory builds the view for a resolved route.
type Factory[V any] func(Route, Params) (V, error)

// Location is one entry of the navigation history.
type Location struct {
	Route  Route
	Params Params
	Path   string
}

// Router resolves paths to views. A view is built by its route's factory the
// first time its path is visited and reused afterwards.
type Router[V any] struct {
	set       *Set
	factories map[string]Factory[V]
	views     map[string]V
	history   []Location
}

func NewRouter[V any](set *Set) *Router[V] {
	return &Router[V]{set: set, factories: map[string]Factory[V]{}, views: map[string]V{}}
}

// Register sets the factory for the named route.
func (r *Router[V]) Register(name string, f Factory[V]) {
	r.factories[name] = f
}

// Navigate resolves path, building its view if needed, and pushes it onto
// the history.
func (r *Router[V]) Navigate(path string) (V, error) {
	var zero V
	route, params, err := r.set.Match(path)
	if err != nil {
		return zero, err
	}
	path, err = r.set.Href(route.Name, params)
	if err != nil {
		return zero, err
	}
	v, ok := r.views[path]
	if !ok {
		f, ok := r.factories[route.Name]
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrNoFactory, route.Name)
		}
		v, err = f(route, params)
		if err != nil {
			return zero, fmt.Errorf("load %s: %w", route.Name, err)
		}
		r.views[path] = v
	}
	r.history = append(r.history, Location{Route: route, Params: params, Path: path})
	return v, nil
}

// Back pops the current location and returns the view underneath. It reports
// false when there is nothing to go back to.
func (r *Router[V]) Back() (V, bool) {
	var zero V
	if len(r.history) < 2 {
		return zero, false
	}
	r.history = r.history[:len(r.history)-1]
	return r.views[r.history[len(r.history)-1].Path], true
}

// Current returns the location on top of the history.
func (r *Router[V]) Current() (Location, bool) {
	if len(r.history) == 0 {
		return Location{}, false
	}
	return r.history[len(r.history)-1], true
}

// Breadcrumbs returns display names from the most recent breadcrumb root to
// the current location.
func (r *Router[V]) Breadcrumbs() []string {
	start := 0
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Route.BreadcrumbRoot {
			start = i
			break
		}
	}
	out := make([]string, 0, len(r.history)-start)
	for _, loc := range r.history[start:] {
		out = append(out, loc.Route.DisplayName)
	}
	return out
}
