// Package main is the vibetime command-line world clock.
package main

import (
	"os"

	"github.com/codeGROOVE-dev/vibetime/cmd/vibetime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
