// Command prodcount counts the distinct products of the n×n multiplication table.
//
//	prodcount [flags] n
//
// All ranks run inside this process. Only the coordinator's result is printed:
//
//	Total: 248083
//	Time elapsed: 0.01 seconds
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
