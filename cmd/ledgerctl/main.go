package main

import (
	"os"

	"github.com/cyberregistro/ledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
