// Package main provides the approuter CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/approuter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
