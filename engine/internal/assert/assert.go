// Package assert provides the engine's fail-fast checks for programming errors.
package assert

import "fmt"

// That panics with a formatted message when cond is false.
//
// Parameters:
//   - cond: the condition that must hold
//   - format: fmt-style message describing the violated contract
//   - args: format arguments
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
