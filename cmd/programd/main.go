// Command programd runs the event program scheduler: the HTTP API, schema
// migrations, and operator commands for conflicts, reminders and exports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
