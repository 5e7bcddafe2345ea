package main

import (
	"os"

	"github.com/anvil-build/anvil/cmd/anvil/cli"
)

func main() {
	os.Exit(int(cli.Execute()))
}
