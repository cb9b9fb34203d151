package main

import (
	"os"

	"github.com/tormodhaugland/cim/cmd/cim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
