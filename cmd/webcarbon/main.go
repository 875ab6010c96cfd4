// Command webcarbon estimates the carbon footprint of web pages. It runs as
// an HTTP and gRPC service, a one-shot CLI, or an MCP stdio server.
package main

import (
	"fmt"
	"os"
)

// Set by the release build via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
