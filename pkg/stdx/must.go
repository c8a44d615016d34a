// Package stdx holds tiny generic helpers the standard library does not
// provide.
package stdx

// Must0 panics when err is not nil. Use it for operations that cannot fail
// outside of programmer error.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 returns v, panicking when err is not nil.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Must2 returns both values, panicking when err is not nil.
func Must2[T any, V any](t T, v V, err error) (T, V) {
	if err != nil {
		panic(err)
	}
	return t, v
}
