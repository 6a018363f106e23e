package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func newLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

// logStoreError records the failing query site; the client only ever sees an
// opaque 500 message.
func logStoreError(log *logrus.Logger, funcName, context string, err error) {
	log.WithFields(logrus.Fields{
		"module":   "store",
		"funcName": funcName,
		"context":  context,
	}).Error(err.Error())
}
