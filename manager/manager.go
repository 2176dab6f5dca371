package manager

import (
	"github.com/sirupsen/logrus"

	"aigateway/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
