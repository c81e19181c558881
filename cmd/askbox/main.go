package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	rootcmder "github.com/papercomputeco/askbox/cmd/askbox/root"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootcmder.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
