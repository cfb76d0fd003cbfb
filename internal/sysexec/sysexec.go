// Package sysexec restarts the running program in place.
package sysexec

import (
	"fmt"
	"os"
)

// Restart replaces the current process image with a fresh copy of the
// running executable, keeping its arguments and environment.  Before
// the switch, cleanup (if non-nil) runs; a cleanup error aborts the
// restart.  On success Restart does not return.
func Restart(cleanup func() error) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if cleanup != nil {
		if err := cleanup(); err != nil {
			return fmt.Errorf("restart cleanup: %w", err)
		}
	}
	return replace(self, os.Args, os.Environ())
}
