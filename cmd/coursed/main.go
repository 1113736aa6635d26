package main

import (
	"log"

	"github.com/edustack/coursegate/internal/course/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize course service: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("course service error: %v", err)
	}
}
