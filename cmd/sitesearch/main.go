// Package main provides the entry point for the sitesearch CLI.
package main

import (
	"os"

	"github.com/milkdragon/sitesearch/cmd/sitesearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
