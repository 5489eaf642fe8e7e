// progression – disease progression assistant over a data warehouse.
//
// Entry point: runs the Cobra root command, which launches the terminal
// chat by default or the web chat with `serve`.
package main

import (
	"os"

	"github.com/DachengChen/progression/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
