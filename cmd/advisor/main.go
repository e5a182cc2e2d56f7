// Command advisor answers academic planning questions from the terminal
// using the same pipelines as the HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
