package main

import (
	"fmt"
	"os"

	"github.com/mgmtd/beadapter/cmd/mgmtd-beadapterd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
