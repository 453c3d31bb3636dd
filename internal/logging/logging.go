// Package logging configures the process-wide logger.
package logging

import (
	"log"
	"os"
)

// Init sends log output to stdout with microsecond timestamps.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
