// Package main is the entry point for the wxscrape CLI.
package main

import (
	"os"

	"github.com/jmylchreest/wxscrape/cmd/wxscrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
