//go:build !unix

package lock

import (
	"fmt"
	"os"
	"runtime"
)

// Exclusive is not available on this platform
func Exclusive(f *os.File) error {
	return fmt.Errorf("failed to lock %s: advisory locks are not supported on %s", f.Name(), runtime.GOOS)
}
