package main

import (
	"os"

	"github.com/timmy/reviewdash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
