package main

import (
	"os"

	"trivia-visualizer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
