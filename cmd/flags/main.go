package main

import (
	"log"

	"github.com/aussiebroadwan/flagtree/internal/flags/app"
)

//go:generate swag init -g internal/flags/http/router.go -d ../../ -o ../../api/flags --packageName flags

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
