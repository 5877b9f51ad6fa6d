package main

import (
	"os"

	"github.com/christophhagen/RendezvousClient/cmd/rendezvous/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
