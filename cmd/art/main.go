// Command art is the version-control CLI.
package main

import (
	"os"

	"github.com/artvc/art/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
