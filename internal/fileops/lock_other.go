//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package fileops

import "os"

// Platforms without flock publish without advisory locking.
func lockExclusive(*os.File) error { return nil }

func unlock(*os.File) error { return nil }
