//go:build debug

package render

// debugChecks enables precondition panics for texture coordinates and
// pixel addresses. Build with -tags debug.
const debugChecks = true
