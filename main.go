package main

import (
	"os"

	"aotc/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args, os.Stdout, os.Stderr))
}
