package main

import (
	"os"

	"github.com/aistudio/agentd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
