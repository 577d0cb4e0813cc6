// Package main is the entry point for the tixload CLI.
package main

import (
	"tixload/cli/cmd"
)

func main() {
	cmd.Execute()
}
