// cmd/rsys/main.go
package main

import (
	"os"

	"github.com/arc-language/rsys/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.Report(err, os.Stdout, os.Stderr))
	}
}
