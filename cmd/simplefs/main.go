package main

import (
	"fmt"
	"os"

	"github.com/mit-pdos/go-simplefs/internal/config"
	"github.com/mit-pdos/go-simplefs/internal/logger"
)

func main() {
	configFile := os.Getenv("SIMPLEFS_CONFIG")

	if err := config.Initialize(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
