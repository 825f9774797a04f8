// Command chainxt builds calls for a runtime node, submits them and
// watches its event log block by block.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
