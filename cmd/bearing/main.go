package main

import (
	"log"

	"github.com/windmesh/bearing/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ bearing failed to start: %v", err)
	}
}
