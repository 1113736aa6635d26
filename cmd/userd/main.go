package main

import (
	"log"

	"github.com/edustack/coursegate/internal/user/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize user service: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("user service error: %v", err)
	}
}
