// Command cardcheck runs the customer card smoke test against the local app.
package main

import (
	"log"
	"os"

	"github.com/ibeckermayer/cardcheck/internal/cli"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(cli.Execute())
}
