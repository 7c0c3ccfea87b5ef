package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/winify/cmd/winify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := winify.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
