package main

import (
	"log"

	"github.com/allmytab/startpage/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ startpaged failed to start: %v", err)
	}
}
