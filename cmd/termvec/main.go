// Package main is the entry point for the termvec CLI.
package main

import (
	"termvec/internal/cmd"
)

func main() {
	cmd.Execute()
}
