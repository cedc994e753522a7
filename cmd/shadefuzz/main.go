// Command shadefuzz is the CLI driver wrapping pkg/api. It is an external
// driver kept intentionally thin: all generation logic lives in pkg/api and
// the internal packages it wires together.
package main

import (
	"os"

	"github.com/shadefuzz/shadefuzz/cmd/shadefuzz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
