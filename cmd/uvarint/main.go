package main

import (
	"os"

	"github.com/spinifex/uvarint/cmd/uvarint/cmds"
	"github.com/spinifex/uvarint/pkg/logflags"
)

func main() {
	code := cmds.Execute(cmds.New(false), os.Stderr)
	if code != 0 {
		logflags.Close()
	}
	os.Exit(code)
}
