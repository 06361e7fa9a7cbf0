package main

import (
	"os"

	"github.com/garagon/mancheck/cmd/mancheck/commands"
)

func main() {
	os.Exit(commands.ExitCode(commands.Execute()))
}
