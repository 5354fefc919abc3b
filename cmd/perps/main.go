package main

import (
	"os"

	"github.com/ggonzalez94/onchain-cli/internal/perpsapp"
)

func main() {
	runner := perpsapp.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
