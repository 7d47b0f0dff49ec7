// Command esdl-history replays scripted edits on an energy system and prints
// the resulting undo history.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
