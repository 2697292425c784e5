// Package logging builds the logrus logger used by the CLI.
package logging

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// New returns a logger writing text entries at level to out.
func New(out io.Writer, level string) (*log.Logger, error) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(parsed)
	logger.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return logger, nil
}
