// Package main provides the entry point for the conceptrag CLI.
package main

import (
	"os"

	"github.com/concept-rag/conceptrag/cmd/conceptrag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
