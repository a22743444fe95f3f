package main

import (
	"os"

	"growth_hub/cmd/growthctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
