package main

import (
	"github.com/joho/godotenv"

	"github.com/dgallion1/docsum/internal/cli"
)

func main() {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()
	cli.Execute()
}
