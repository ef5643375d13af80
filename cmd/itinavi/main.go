package main

import (
	"os"

	"github.com/koyostar/ItinaviCN-sub000/cmd/itinavi/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
