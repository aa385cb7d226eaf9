package collect

import "github.com/sirupsen/logrus"

var log = logrus.WithField("component", "collect")
