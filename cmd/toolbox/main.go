// Package main is the entry point for the toolbox admin binary.
package main

import "os"

func main() {
	os.Exit(Execute())
}
