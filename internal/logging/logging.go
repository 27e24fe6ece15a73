package logging

import (
	log "github.com/sirupsen/logrus"
)

// Setup switches logrus to JSON lines that Cloud Logging understands.
func Setup(level string) {
	log.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyMsg:   "message",
			log.FieldKeyLevel: "severity",
		},
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
