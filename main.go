// Package main is the entry point for the olly CLI.
package main

import "github.com/ollyhq/olly-cli/cmd"

func main() {
	cmd.Execute()
}
