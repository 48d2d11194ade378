// Package routes declares the browser's URL states and resolves paths to
// them.
package routes

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNotFound     = errors.New("route not found")
	ErrMissingParam = errors.New("missing route parameter")
)

// Module tags the routes registered by this package.
const Module = "tables"

// Params holds the values of a route's {placeholders}.
type Params map[string]string

// Route is one navigable state.
type Route struct {
	Name           string
	URL            string
	DisplayName    string
	BreadcrumbRoot bool
	Module         string
}

var (
	// Tables lists every table of the open database.
	Tables = Route{Name: "tables", URL: "/tables", DisplayName: "Tables", BreadcrumbRoot: true, Module: Module}
	// Table shows one table's columns and rows.
	Table = Route{Name: "table", URL: "/tables/{schema}/{tableName}", DisplayName: "Table Details", Module: Module}
)

// Set is an ordered collection of routes. The first matching route wins.
type Set struct {
	routes []Route
}

func NewSet(routes ...Route) *Set {
	return &Set{routes: routes}
}

// Default returns the tables and table routes.
func Default() *Set {
	return NewSet(Tables, Table)
}

// Get returns the route with the given state name.
func (s *Set) Get(name string) (Route, bool) {
	for _, r := range s.routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Match resolves a path. A trailing slash is ignored.
func (s *Set) Match(path string) (Route, Params, error) {
	got := segments(path)
	for _, r := range s.routes {
		want := segments(r.URL)
		if len(want) != len(got) {
			continue
		}
		params := Params{}
		ok := true
		for i, seg := range want {
			if name, isParam := placeholder(seg); isParam {
				v, err := url.PathUnescape(got[i])
				if err != nil || v == "" {
					ok = false
					break
				}
				params[name] = v
				continue
			}
			if seg != got[i] {
				ok = false
				break
			}
		}
		if ok {
			return r, params, nil
		}
	}
	return Route{}, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Href builds the path for a named route.
func (s *Set) Href(name string, params Params) (string, error) {
	r, ok := s.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	segs := segments(r.URL)
	for i, seg := range segs {
		p, isParam := placeholder(seg)
		if !isParam {
			continue
		}
		v := params[p]
		if v == "" {
			return "", fmt.Errorf("%w: %s needs %s", ErrMissingParam, name, p)
		}
		segs[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(segs, "/"), nil
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func placeholder(seg string) (string, bool) {
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
