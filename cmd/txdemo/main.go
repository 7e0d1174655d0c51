package main

import (
	"fmt"
	"os"

	"github.com/forgo/txsandbox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "txdemo:", err)
		os.Exit(1)
	}
}
