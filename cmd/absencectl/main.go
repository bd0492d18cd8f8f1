package main

import (
	"absence-bot/internal/cli"
	"os"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		os.Exit(1)
	}
}
