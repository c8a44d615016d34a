// Package registry provides a tiny concurrent name-to-value registry used
// for model lookup tables.
package registry

import "github.com/alphadose/haxmap"

// Registry maps names to values safely across goroutines. The zero value is
// not usable; construct one with New.
type Registry[T any] struct {
	values *haxmap.Map[string, T]
}

func New[T any]() *Registry[T] {
	return &Registry[T]{values: haxmap.New[string, T]()}
}

func (r *Registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *Registry[T]) Add(name string, value T) {
	r.values.Set(name, value)
}

// GetOrAdd returns the registered value for name, computing and storing it
// with valueFn when absent. The boolean reports whether a value was already
// present.
func (r *Registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	return r.values.GetOrCompute(name, valueFn)
}

func (r *Registry[T]) Del(name string) {
	r.values.Del(name)
}
