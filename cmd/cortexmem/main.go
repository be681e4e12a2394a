package main

import (
	"github.com/dyike/cortexmem/internal/cli"
)

func main() {
	// Execute the root command
	cli.Run()
}
