package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hackgods/petcare-booking/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
