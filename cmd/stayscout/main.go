// Package main is the entry point for the stayscout CLI.
package main

import (
	"os"

	"github.com/stayscout/stayscout/cmd/stayscout/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
