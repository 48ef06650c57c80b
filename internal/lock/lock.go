//go:build unix

// Package lock takes the advisory output lock requested with -l.
package lock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Exclusive blocks until an exclusive flock(2) is held on f. The lock lives
// as long as the descriptor, so it is released when the process exits.
func Exclusive(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to lock %s: %w", f.Name(), err)
		}
		return nil
	}
}
