package main

import (
	"log"

	"timsbridge/internal/cli"
	"timsbridge/internal/logger"
)

func main() {
	cfg := logger.DefaultConfig()
	cfg.Output = "stderr"
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	cli.Execute()
}
