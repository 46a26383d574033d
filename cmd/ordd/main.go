// Command ordd runs the ordinal flow indexer against a chain RPC
// endpoint, persisting into a local bbolt file.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Default to a pretty console logger; run's --log-format flag can
	// switch to JSON for production use.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	Execute()
}
