// radiocon - a line-oriented console for driving a wireless radio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"radiocon/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "radiocon: %v\n", err)
		os.Exit(1)
	}
}
