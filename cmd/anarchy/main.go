// Command anarchy parses and evaluates programs written in the Anarchy
// expression language.
package main

import (
	"fmt"
	"os"

	"github.com/Mstrodl/anarchy/cmd/anarchy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
