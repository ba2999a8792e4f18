// The engine binary is the interactive and batch front end. With no
// arguments it enters the console menu; with a CSV path it replays the file's
// commands against a fresh book.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"skoll/internal/batch"
	"skoll/internal/book"
	"skoll/internal/config"
	"skoll/internal/console"
)

func main() {
	// Only the log level is used here, so invalid server settings are
	// reported but do not stop the console or batch run.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring bad configuration: %v\n", err)
	}
	setupLogging(cfg.Log.Level)

	b := book.New()

	if len(os.Args) > 1 {
		if _, err := batch.ProcessFile(os.Args[1], b); err != nil {
			log.Error().Err(err).Msg("batch run failed")
			os.Exit(1)
		}
		return
	}

	console.Run(b, os.Stdin, os.Stdout)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}
