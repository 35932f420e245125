// Package main (logs.go) :
// These methods are for logging errors and warnings.
package main

import (
	"fmt"
	"io"

	"github.com/orandin/lumberjackrus"
	"github.com/sirupsen/logrus"
)

// newLogger : Create logger. When the log file is given, the logs are also written to the file as JSON.
func newLogger(cfg *config, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = out
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFile != "" {
		hook, err := lumberjackrus.NewHook(
			&lumberjackrus.LogFile{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.LogFileSize,
				MaxBackups: 1,
				MaxAge:     1,
				Compress:   false,
				LocalTime:  false,
			},
			logrus.DebugLevel,
			&logrus.JSONFormatter{},
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("creating log file hook: %w", err)
		}
		log.AddHook(hook)
	}
	return log, nil
}
