//go:build unix

package sysexec

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func replace(path string, argv, env []string) error {
	if err := unix.Exec(path, argv, env); err != nil {
		return fmt.Errorf("exec %q: %w", path, err)
	}
	return nil
}
