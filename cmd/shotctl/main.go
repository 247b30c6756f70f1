package main

import (
	"os"

	"github.com/kailas-cloud/shotsearch/internal/cli"
	"github.com/kailas-cloud/shotsearch/internal/version"
)

func main() {
	if err := cli.Execute(version.String()); err != nil {
		os.Exit(1)
	}
}
