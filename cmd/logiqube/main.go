// Command logiqube plays 4x4x4 tic-tac-toe in the terminal or serves a local
// browser board.
//
// Usage:
//
//	logiqube play
//	logiqube serve --addr 127.0.0.1:8080
//	logiqube lines
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
