package main

import "github.com/permcomb/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
