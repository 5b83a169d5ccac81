// Package main provides the entry point for the docarc CLI.
package main

import (
	"os"

	"github.com/docarc/docarc/cmd/docarc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
