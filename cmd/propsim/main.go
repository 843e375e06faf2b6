package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rustyeddy/propsim/cmd/propsim/cmd"
)

func main() {
	// Optional .env for local defaults; absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
