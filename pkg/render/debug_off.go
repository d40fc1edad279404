//go:build !debug

package render

const debugChecks = false
