package main

import (
	"os"

	"github.com/dshills/promptmd/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
