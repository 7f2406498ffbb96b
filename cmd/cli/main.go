// Package main is the entry point for the sitemate CLI.
package main

import (
	"os"

	"sitemate/cmd/cli/cmd"
	"sitemate/internal/logging"
)

func main() {
	defer logging.Sync()
	if err := cmd.Execute(); err != nil {
		logging.Sync()
		os.Exit(1)
	}
}
