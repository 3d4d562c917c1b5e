// Command wut is a small REPL around collection.Collection, the "surrounding
// CLI" the library itself deliberately leaves out. It loads a JSON array of
// objects, builds a hash index per --indexes attribute, and evaluates
// predicate strings read from stdin, printing the rendered plan, the
// optimized plan, and the matching objects, in that order.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/bzczb/wut/cmd/wut/repl"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "wut: automaxprocs: %v\n", err)
	}

	if err := repl.RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
