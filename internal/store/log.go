package store

import "github.com/sirupsen/logrus"

var log = logrus.WithField("component", "store")
