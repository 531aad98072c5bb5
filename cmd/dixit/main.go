// Package main is the entry point for the dixit CLI.
package main

import "github.com/dixit-research/dixit/internal/commands"

func main() {
	commands.Execute()
}
