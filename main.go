package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gamefilm/cli"
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	if err := cli.NewRootCmd(&cli.Dependencies{}).Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
