package framework

import (
	"fmt"
	"reflect"
)

// A resource is a singleton value owned by a Context and retrievable only by
// re-asserting its type at the call site. One store serves every subsystem
// (the database connection, UI session state, tab-kind catalogs) without the
// Context definition knowing any of their types, which is what lets plugins
// extend the context without modifying it.
//
// The registry keys on reflect.Type and boxes each value behind a pointer, so
// GetResource hands back a reference to the single live instance. Lookup never
// matches a different type: the read path type-asserts against the caller's
// expected type and treats a mismatch as absence.
type registry struct {
	entries map[reflect.Type]any
}

func newRegistry() registry {
	return registry{entries: make(map[reflect.Type]any)}
}

func resourceKey[R any]() reflect.Type {
	return reflect.TypeOf((*R)(nil)).Elem()
}

// AddResource adds value to the context's resource registry under its own
// type, overwriting any existing entry of that type. The registry owns the
// stored copy; mutate it through GetResource.
func AddResource[R any](c *Context, value R) {
	c.resources.entries[resourceKey[R]()] = &value
}

// GetResource returns a pointer to the live instance of R, or (nil, false) if
// no resource of that exact type is registered. Absence is represented, never
// an error; convert it at the call site.
func GetResource[R any](c *Context) (*R, bool) {
	boxed, ok := c.resources.entries[resourceKey[R]()]
	if !ok {
		return nil, false
	}
	res, ok := boxed.(*R)
	if !ok {
		// Unreachable as long as entries are only written by AddResource;
		// treat a confused entry as absent rather than handing back a
		// mistyped reference.
		return nil, false
	}
	return res, true
}

// HasResource reports whether a resource of type R is registered.
func HasResource[R any](c *Context) bool {
	_, ok := c.resources.entries[resourceKey[R]()]
	return ok
}

// MustResource returns the live instance of R or ErrMissingResource naming
// the type. Handler bodies use it to turn absence into an application error.
func MustResource[R any](c *Context) (*R, error) {
	res, ok := GetResource[R](c)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingResource, resourceKey[R]())
	}
	return res, nil
}

// Connection returns the database connection resource, or ErrNoConnection if
// Startup has not run.
func (c *Context) Connection() (*DB, error) {
	db, ok := GetResource[DB](c)
	if !ok {
		return nil, ErrNoConnection
	}
	return db, nil
}
