// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xlog configures the structured logger shared by every command
// and package that wants to report diagnostics about the process it is
// attached to, without taking a hard dependency on any one pid or
// operation at init time.
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger entry tagged with the target pid, reading its
// level from LOG_LEVEL (logrus level names; defaults to info when unset
// or unparsable) and its format from LOG_FORMAT ("json" or "text",
// defaulting to text for an interactive terminal use).
func New(pid int) *logrus.Entry {
	log := logrus.New()
	log.SetLevel(level())
	log.SetOutput(os.Stderr)
	if os.Getenv("LOG_FORMAT") == "json" {
		log.Formatter = &logrus.JSONFormatter{}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	return log.WithFields(logrus.Fields{
		"pid": pid,
	})
}

func level() logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
