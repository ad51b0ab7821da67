package main

import (
	"log"

	"github.com/okorolenko/tinylink/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
