package main

import (
	"fmt"
	"os"

	"github.com/handiism/ranksim/internal/config"
	"github.com/handiism/ranksim/internal/tui"
)

func main() {
	dir := config.DefaultSettings().OutputDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := tui.Run(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
