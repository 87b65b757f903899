// tripquery runs the trip interpreter and booking link builder locally.
//
// Usage:
//
//	tripquery interpret "NYC to Istanbul June 15-22 with 2 adults"
//	tripquery link --from JFK --to IST --depart 2025-06-15 --return 2025-06-29 --adults 2
//	tripquery airport "new york"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
