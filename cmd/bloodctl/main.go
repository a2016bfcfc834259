// Command bloodctl is the operator CLI for matching-svc: it creates and
// processes blood requests, previews donor rankings, manages the donor
// registry and bank inventory, and downloads the xlsx report.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
