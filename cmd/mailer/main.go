package main

import (
	"log"

	"github.com/edustack/coursegate/internal/mailer/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize mail worker: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("mail worker error: %v", err)
	}
}
