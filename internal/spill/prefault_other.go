//go:build !linux

package spill

// prefaultRegion is a no-op on non-Linux platforms.
func prefaultRegion(data []byte) {}
