package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	log  = zap.NewNop()
	once sync.Once
)

// Init builds the process-wide logger. Development mode writes human readable
// console output at debug level; otherwise JSON at info level.
func Init(dev bool) error {
	var err error
	once.Do(func() {
		var l *zap.Logger
		if dev {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return
		}
		log = l
	})
	return err
}

// L returns the process-wide logger. Before Init it is a no-op logger, which
// keeps tests quiet.
func L() *zap.Logger {
	return log
}

func Sync() {
	_ = log.Sync()
}
