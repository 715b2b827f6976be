package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/accel/internal/logger"
)

var (
	logLevel  string
	logFormat string
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func newLog() (logger.Logger, error) {
	if err := logger.ValidFormat(logFormat); err != nil {
		return nil, err
	}
	return logger.Build(os.Stderr, logFormat, logLevel), nil
}
