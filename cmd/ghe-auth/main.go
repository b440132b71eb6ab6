package main

import (
	"os"

	"github.com/giantswarm/ghe-auth/cmd/ghe-auth/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
