package ufc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by operations that a particular element
	// family does not provide, e.g. dof coordinates for global dofs.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrNotRegistered is returned when a form has no integral for the
	// requested subdomain id.
	ErrNotRegistered = errors.New("integral not registered")
)

// CheckIndex panics when i is outside [0, n) and returns i otherwise. Out
// of range indices are programming errors, every bound is queryable in
// advance.
func CheckIndex(what string, i, n int) int {
	if i < 0 || i >= n {
		panic(fmt.Errorf("%s index %d out of range [0, %d)", what, i, n))
	}
	return i
}
