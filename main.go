package main

import (
	"os"

	"github.com/kilohertztli/Mathenique/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
