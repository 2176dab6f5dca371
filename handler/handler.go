// Package handler exposes the generation and workflow services over HTTP.
package handler

import (
	"github.com/sirupsen/logrus"

	"aigateway/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
