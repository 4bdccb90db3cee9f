// Command fitmentctl resolves battery fitment from the terminal, either
// in-process against the configured backends or through a running API over
// NATS.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
