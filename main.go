// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/autoscan-cli/cmd"
)

// main is the entry point for the autoscan CLI.
func main() {
	// A hung analysis or network call blocks the whole scenario; Ctrl-C
	// cancels the context and aborts cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
