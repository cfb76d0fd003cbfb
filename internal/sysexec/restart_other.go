//go:build !unix

package sysexec

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// replace emulates exec(2) by running a child with the same stdio and
// exiting with its status.
func replace(path string, argv, env []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", path, err)
	}
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	if err != nil {
		return fmt.Errorf("wait %q: %w", path, err)
	}
	os.Exit(0)
	return nil
}
