package main

import (
	"os"

	"github.com/hazemfarra/argus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
