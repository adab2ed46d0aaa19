// Command kclexport translates solid-model descriptions into pipe-style
// scripts, checks generated scripts and previews their geometry.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
