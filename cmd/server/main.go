package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"wallet-escrow-service/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatal("error creating an application instance: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Fatal("application startup error: ", err)
	}
}
