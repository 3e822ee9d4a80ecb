// Command sql-explainer serves a web form and API that explain SQL in plain
// language using a model hosted by Ollama.
package main

import (
	"fmt"
	"os"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
