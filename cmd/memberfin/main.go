// Package main is the entry point for the memberfin CLI.
package main

import (
	"os"

	"github.com/memberfin/memberfin/cmd/memberfin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
