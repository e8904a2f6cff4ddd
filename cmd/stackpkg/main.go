package main

import (
	"os"

	"github.com/mensylisir/stackpkg/cmd/stackpkg/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
