// Command vfscorectl drives a Class from the command line against the
// in-tree stub tree backend, mounting a real local directory as a
// read-through fixture so open/ls/cat/setctl can be exercised by hand.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
