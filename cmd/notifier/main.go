package main

import (
	"log"

	"wallet-escrow-service/internal/app"
)

func main() {
	n, err := app.NewNotifier()
	if err != nil {
		log.Fatal("error creating an application instance: ", err)
	}

	if err := n.Run(); err != nil {
		log.Fatal("notifier error: ", err)
	}
}
