package main

import (
	"os"

	"github.com/ggonzalez94/onchain-cli/internal/folioapp"
)

func main() {
	runner := folioapp.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
