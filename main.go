package main

import (
	"os"

	"github.com/arnavj/consultmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
