// Package main is the entry point for the freight-rating CLI.
package main

import (
	"os"

	"freight-rating/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
