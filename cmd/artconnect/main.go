package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"artconnect/internal/cli"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load(".env")

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
