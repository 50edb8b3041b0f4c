package main

import (
	"log"

	"github.com/joho/godotenv"

	"KharitonBot/internal/adapters/app"
)

func main() {
	// .env is optional; real deployments pass plain environment variables.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		log.Fatalf("create app: %v", err)
	}
	a.Start()
}
