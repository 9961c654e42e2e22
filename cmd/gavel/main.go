package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/gavelhq/gavel/internal/cli"
)

func main() {
	// A missing .env is fine; keys may come from the environment or config.
	_ = godotenv.Load()

	os.Exit(cli.Run())
}
