package main

import (
	"os"

	"github.com/rustyeddy/reserveflow/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
